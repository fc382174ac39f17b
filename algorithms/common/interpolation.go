package common

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/interp"
)

// gridTolerance is the relative tolerance used when comparing frequency grids
const gridTolerance = 1e-9

// GridsMatch reports whether two frequency grids hold the same points
func GridsMatch(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		scale := math.Max(math.Abs(a[i]), math.Abs(b[i]))
		if math.Abs(a[i]-b[i]) > gridTolerance*math.Max(scale, 1) {
			return false
		}
	}
	return true
}

// Interpolator evaluates piecewise-linear fits of real samples on a strictly
// increasing grid
type Interpolator struct {
	fit  interp.PiecewiseLinear
	minX float64
	maxX float64
}

// NewInterpolator fits y(x). x must be strictly increasing
func NewInterpolator(x, y []float64) (*Interpolator, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("interpolation x (%d) and y (%d) lengths differ", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("interpolation needs at least 2 points, got %d", len(x))
	}

	ip := &Interpolator{minX: x[0], maxX: x[len(x)-1]}
	if err := ip.fit.Fit(x, y); err != nil {
		return nil, fmt.Errorf("interpolation fit: %w", err)
	}
	return ip, nil
}

// Contains reports whether xi lies inside the fitted range
func (ip *Interpolator) Contains(xi float64) bool {
	span := ip.maxX - ip.minX
	return xi >= ip.minX-gridTolerance*span && xi <= ip.maxX+gridTolerance*span
}

// At returns the interpolated value at xi, clamped to the fitted range
func (ip *Interpolator) At(xi float64) float64 {
	return ip.fit.Predict(Clamp(xi, ip.minX, ip.maxX))
}

// ResampleComplex linearly resamples complex values given on grid x onto the
// query grid. Real and imaginary parts are interpolated independently. Query
// points outside x produce an error.
func ResampleComplex(x []float64, values []complex128, query []float64) ([]complex128, error) {
	re := make([]float64, len(values))
	im := make([]float64, len(values))
	for i, v := range values {
		re[i] = real(v)
		im[i] = imag(v)
	}

	reFit, err := NewInterpolator(x, re)
	if err != nil {
		return nil, err
	}
	imFit, err := NewInterpolator(x, im)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, len(query))
	for i, q := range query {
		if !reFit.Contains(q) {
			return nil, fmt.Errorf("query point %g outside grid [%g, %g]", q, x[0], x[len(x)-1])
		}
		out[i] = complex(reFit.At(q), imFit.At(q))
	}
	return out, nil
}

// Magnitudes returns |v| for each complex value
func Magnitudes(values []complex128) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = cmplx.Abs(v)
	}
	return out
}
