package windowing

import (
	"math"
)

// Tukey is flat in the middle with cosine tapers over alpha/2 of each side
type Tukey struct {
	taper
	alpha float64
}

// NewTukey creates a new symmetric Tukey window. alpha is clamped to [0, 1];
// 0 is rectangular and 1 is Hann.
func NewTukey(size int, alpha float64) *Tukey {
	alpha = math.Max(0, math.Min(1, alpha))
	t := &Tukey{taper: taper{name: string(TypeTukey)}, alpha: alpha}
	t.coefficients = make([]float64, size)

	for i := range size {
		x := position(i, size)
		switch {
		case alpha == 0:
			t.coefficients[i] = 1.0
		case x < alpha/2:
			t.coefficients[i] = 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
		case x > 1-alpha/2:
			t.coefficients[i] = 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
		default:
			t.coefficients[i] = 1.0
		}
	}
	return t
}

// GetAlpha returns the Tukey alpha parameter
func (t *Tukey) GetAlpha() float64 {
	return t.alpha
}
