package common

import (
	"math"
)

// UnwrapPhase removes 2*pi jumps from a phase sequence ordered by increasing
// frequency. Multiples of 2*pi are added so that every consecutive difference
// of the result lies in (-pi, pi].
func UnwrapPhase(phase []float64) []float64 {
	if len(phase) == 0 {
		return nil
	}

	out := make([]float64, len(phase))
	out[0] = phase[0]
	offset := 0.0

	for i := 1; i < len(phase); i++ {
		d := phase[i] + offset - out[i-1]
		if d > math.Pi || d <= -math.Pi {
			offset += WrapPhase(d) - d
		}
		out[i] = phase[i] + offset
	}

	return out
}

// WrapPhase maps a phase into (-pi, pi].
func WrapPhase(phase float64) float64 {
	w := math.Mod(phase+math.Pi, 2*math.Pi)
	if w <= 0 {
		w += 2 * math.Pi
	}
	return w - math.Pi
}

// PhaseOffset estimates the whole number of 2*pi turns by which an unwrapped
// phase is displaced from a line through the origin. The line is fitted to
// the points selected by [lo, hi).
func PhaseOffset(frequency, phase []float64, lo, hi int) float64 {
	if lo < 0 || hi > len(phase) || hi-lo < 2 || len(frequency) != len(phase) {
		return 0
	}

	_, intercept := LinRegression(frequency[lo:hi], phase[lo:hi])
	return 2 * math.Pi * math.Round(intercept/(2*math.Pi))
}
