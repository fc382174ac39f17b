package thz

import (
	"math"
)

// spacingTolerance is the relative deviation allowed between consecutive
// sample intervals of a uniformly sampled waveform.
const spacingTolerance = 1e-6

// Waveform is a digitized terahertz pulse: amplitude sampled on a uniform,
// increasing time axis (ps).
type Waveform struct {
	Time      []float64 `json:"time"`
	Amplitude []float64 `json:"amplitude"`
}

// NewWaveform builds a waveform of len(amplitude) samples starting at t0 with
// spacing dt.
func NewWaveform(t0, dt float64, amplitude []float64) Waveform {
	time := make([]float64, len(amplitude))
	for i := range time {
		time[i] = t0 + float64(i)*dt
	}
	amp := make([]float64, len(amplitude))
	copy(amp, amplitude)
	return Waveform{Time: time, Amplitude: amp}
}

// Len returns the number of samples.
func (w Waveform) Len() int {
	return len(w.Amplitude)
}

// Empty reports whether the waveform carries no samples.
func (w Waveform) Empty() bool {
	return len(w.Amplitude) == 0 && len(w.Time) == 0
}

// Spacing returns the mean sample interval.
func (w Waveform) Spacing() float64 {
	if len(w.Time) < 2 {
		return 0
	}
	return (w.Time[len(w.Time)-1] - w.Time[0]) / float64(len(w.Time)-1)
}

// Duration returns the time covered by the record.
func (w Waveform) Duration() float64 {
	if len(w.Time) < 2 {
		return 0
	}
	return w.Time[len(w.Time)-1] - w.Time[0]
}

// Clone returns a deep copy.
func (w Waveform) Clone() Waveform {
	out := Waveform{
		Time:      make([]float64, len(w.Time)),
		Amplitude: make([]float64, len(w.Amplitude)),
	}
	copy(out.Time, w.Time)
	copy(out.Amplitude, w.Amplitude)
	return out
}

// Validate checks that the waveform is usable for spectral analysis.
func (w Waveform) Validate() error {
	if len(w.Time) != len(w.Amplitude) {
		return ShapeMismatchf("waveform time (%d) and amplitude (%d) lengths differ", len(w.Time), len(w.Amplitude))
	}
	if len(w.Time) < 2 {
		return Configurationf("waveform needs at least 2 samples, got %d", len(w.Time))
	}

	dt := w.Spacing()
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Configurationf("waveform time axis must be increasing")
	}

	for i := 1; i < len(w.Time); i++ {
		step := w.Time[i] - w.Time[i-1]
		if math.Abs(step-dt) > spacingTolerance*dt+1e-12 {
			return Configurationf("waveform time axis is not uniform at sample %d", i)
		}
	}

	for i, a := range w.Amplitude {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return Configurationf("waveform amplitude is not finite at sample %d", i)
		}
	}

	return nil
}

// SameSpacing reports whether two waveforms are sampled at the same rate.
func SameSpacing(a, b Waveform) bool {
	da, db := a.Spacing(), b.Spacing()
	return math.Abs(da-db) <= spacingTolerance*math.Max(da, db)
}
