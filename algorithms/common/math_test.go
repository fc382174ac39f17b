package common

import (
	"math"
	"testing"
)

func TestMaxAbsIndex(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want int
	}{
		{"empty", nil, -1},
		{"negative peak", []float64{0.1, -3, 2}, 1},
		{"first of ties", []float64{2, -2, 1}, 0},
	}
	for _, tt := range tests {
		if got := MaxAbsIndex(tt.in); got != tt.want {
			t.Errorf("%s: MaxAbsIndex() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPercentileDoesNotReorderInput(t *testing.T) {
	in := []float64{5, 1, 4, 2, 3}
	if got := Percentile(in, 0.5); got != 3 {
		t.Fatalf("Percentile(0.5) = %g, want 3", got)
	}
	if got := Percentile(in, 0); got != 1 {
		t.Fatalf("Percentile(0) = %g, want 1", got)
	}
	if in[0] != 5 {
		t.Fatalf("Percentile reordered its input: %v", in)
	}
	if got := Percentile(in, 2); got != 0 {
		t.Fatalf("Percentile(2) = %g, want 0", got)
	}
}

func TestLinRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 5, 7}
	slope, intercept := LinRegression(x, y)
	if math.Abs(slope-2) > 1e-12 || math.Abs(intercept-1) > 1e-12 {
		t.Fatalf("LinRegression() = (%g, %g), want (2, 1)", slope, intercept)
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite([]float64{1, 2}) {
		t.Error("AllFinite() = false for finite data")
	}
	if AllFinite([]float64{1, math.Inf(1)}) {
		t.Error("AllFinite() = true with +Inf")
	}
}
