package windowing

import (
	"math"
)

// BlackmanHarris is the four-term minimum side lobe cosine taper
type BlackmanHarris struct {
	taper
}

// NewBlackmanHarris creates a new symmetric Blackman-Harris window
func NewBlackmanHarris(size int) *BlackmanHarris {
	bh := &BlackmanHarris{taper{name: string(TypeBlackmanHarris)}}
	bh.coefficients = make([]float64, size)

	a0, a1, a2, a3 := 0.35875, 0.48829, 0.14128, 0.01168
	for i := range size {
		arg := 2 * math.Pi * position(i, size)
		bh.coefficients[i] = a0 - a1*math.Cos(arg) + a2*math.Cos(2*arg) - a3*math.Cos(3*arg)
	}
	return bh
}
