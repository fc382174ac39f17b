package windowing

import (
	"math"
)

// Hamming is a raised cosine on a 0.08 pedestal
type Hamming struct {
	taper
}

// NewHamming creates a new symmetric Hamming window
func NewHamming(size int) *Hamming {
	h := &Hamming{taper{name: string(TypeHamming)}}
	h.coefficients = make([]float64, size)
	for i := range size {
		h.coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*position(i, size))
	}
	return h
}
