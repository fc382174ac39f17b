package windowing

import (
	"math"
)

// DefaultKaiserBeta gives side lobes close to a Blackman window
const DefaultKaiserBeta = 8.6

// Kaiser approximates the prolate spheroidal taper; beta trades main lobe
// width against side lobe level.
type Kaiser struct {
	taper
	beta float64
}

// NewKaiser creates a new symmetric Kaiser window. Negative beta is treated
// as its magnitude; 0 is rectangular.
func NewKaiser(size int, beta float64) *Kaiser {
	beta = math.Abs(beta)
	k := &Kaiser{taper: taper{name: string(TypeKaiser)}, beta: beta}
	k.coefficients = make([]float64, size)

	norm := besselI0(beta)
	for i := range size {
		arg := 2*position(i, size) - 1
		k.coefficients[i] = besselI0(beta*math.Sqrt(math.Max(0, 1-arg*arg))) / norm
	}
	return k
}

// besselI0 is the zero-order modified Bessel function of the first kind,
// summed from its power series
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	for i := 1; i < 50; i++ {
		half := x / (2 * float64(i))
		term *= half * half
		sum += term
		if term < 1e-12*sum {
			break
		}
	}
	return sum
}

// GetBeta returns the Kaiser beta parameter
func (k *Kaiser) GetBeta() float64 {
	return k.beta
}
