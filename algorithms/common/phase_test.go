package common

import (
	"math"
	"testing"
)

func TestUnwrapPhaseRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		slope float64 // rad per sample
		start float64
	}{
		{"steep negative", -2.9, 0},
		{"shallow negative", -0.3, 0.2},
		{"positive", 1.7, -1},
		{"near pi", -3.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := make([]float64, 200)
			wrapped := make([]float64, 200)
			for i := range want {
				want[i] = tt.start + tt.slope*float64(i)
				wrapped[i] = WrapPhase(want[i])
			}

			got := UnwrapPhase(wrapped)
			for i := range want {
				if math.Abs(got[i]-want[i]) > 1e-9 {
					t.Fatalf("sample %d: got %g, want %g", i, got[i], want[i])
				}
			}
		})
	}
}

func TestUnwrapPhaseMultiTurnJump(t *testing.T) {
	in := []float64{0, 0.1 + 6*math.Pi, 0.2 - 4*math.Pi}
	got := UnwrapPhase(in)
	want := []float64{0, 0.1, 0.2}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("UnwrapPhase() = %v, want %v", got, want)
		}
	}
}

func TestWrapPhase(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-5 * math.Pi / 2, -math.Pi / 2},
	}
	for _, tt := range tests {
		if got := WrapPhase(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("WrapPhase(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}
}

func TestPhaseOffset(t *testing.T) {
	freq := make([]float64, 50)
	phase := make([]float64, 50)
	for i := range freq {
		freq[i] = 0.1 + 0.02*float64(i)
		phase[i] = -3*freq[i] - 4*math.Pi + 0.05*math.Sin(float64(i))
	}

	if got := PhaseOffset(freq, phase, 0, len(freq)); math.Abs(got+4*math.Pi) > 1e-12 {
		t.Fatalf("PhaseOffset() = %g, want %g", got, -4*math.Pi)
	}
	if got := PhaseOffset(freq, phase, 3, 4); got != 0 {
		t.Fatalf("PhaseOffset() over one point = %g, want 0", got)
	}
}
