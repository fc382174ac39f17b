package windowing

import (
	"math"
)

// Bartlett is the triangular taper reaching zero at both edges
type Bartlett struct {
	taper
}

// NewBartlett creates a new symmetric Bartlett window
func NewBartlett(size int) *Bartlett {
	b := &Bartlett{taper{name: string(TypeBartlett)}}
	b.coefficients = make([]float64, size)

	for i := range size {
		b.coefficients[i] = 1 - math.Abs(2*position(i, size)-1)
	}
	return b
}
