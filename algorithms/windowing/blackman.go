package windowing

import (
	"math"
)

// Blackman is the three-term cosine taper with a0=0.42, a1=0.5, a2=0.08
type Blackman struct {
	taper
}

// NewBlackman creates a new symmetric Blackman window
func NewBlackman(size int) *Blackman {
	b := &Blackman{taper{name: string(TypeBlackman)}}
	b.coefficients = make([]float64, size)

	a0, a1, a2 := 0.42, 0.5, 0.08
	for i := range size {
		arg := 2 * math.Pi * position(i, size)
		// Clamp the tiny negative values the cosine sum produces at the edges
		b.coefficients[i] = math.Max(0, a0-a1*math.Cos(arg)+a2*math.Cos(2*arg))
	}
	return b
}
