package windowing

import (
	"math"
)

// Hann is the raised-cosine ("hanning") taper
type Hann struct {
	taper
}

// NewHann creates a new symmetric Hann window
func NewHann(size int) *Hann {
	h := &Hann{taper{name: string(TypeHann)}}
	h.coefficients = make([]float64, size)
	for i := range size {
		h.coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*position(i, size)))
	}
	return h
}
