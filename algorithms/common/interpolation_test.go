package common

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestGridsMatch(t *testing.T) {
	a := []float64{0, 0.1, 0.2}
	if !GridsMatch(a, []float64{0, 0.1 + 1e-13, 0.2}) {
		t.Error("GridsMatch() = false within tolerance")
	}
	if GridsMatch(a, []float64{0, 0.11, 0.2}) {
		t.Error("GridsMatch() = true for different points")
	}
	if GridsMatch(a, a[:2]) {
		t.Error("GridsMatch() = true for different lengths")
	}
}

func TestInterpolatorClamps(t *testing.T) {
	ip, err := NewInterpolator([]float64{0, 1, 2}, []float64{0, 10, 20})
	if err != nil {
		t.Fatalf("NewInterpolator() error = %v", err)
	}
	if got := ip.At(0.5); math.Abs(got-5) > 1e-12 {
		t.Errorf("At(0.5) = %g, want 5", got)
	}
	if got := ip.At(3); math.Abs(got-20) > 1e-12 {
		t.Errorf("At(3) = %g, want 20 (clamped)", got)
	}
	if ip.Contains(2.5) {
		t.Error("Contains(2.5) = true outside the grid")
	}

	if _, err := NewInterpolator([]float64{0}, []float64{0}); err == nil {
		t.Error("NewInterpolator() with one point succeeded")
	}
}

func TestResampleComplex(t *testing.T) {
	x := []float64{0, 1, 2}
	v := []complex128{0, complex(1, -1), complex(2, -2)}

	got, err := ResampleComplex(x, v, []float64{0.5, 1.5})
	if err != nil {
		t.Fatalf("ResampleComplex() error = %v", err)
	}
	want := []complex128{complex(0.5, -0.5), complex(1.5, -1.5)}
	for i := range want {
		if cmplx.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("point %d: got %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := ResampleComplex(x, v, []float64{2.5}); err == nil {
		t.Error("ResampleComplex() outside the grid succeeded")
	}
}
