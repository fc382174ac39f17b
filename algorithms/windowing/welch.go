package windowing

// Welch is the parabolic taper 1 - x^2 over x in [-1, 1]
type Welch struct {
	taper
}

// NewWelch creates a new symmetric Welch window
func NewWelch(size int) *Welch {
	w := &Welch{taper{name: string(TypeWelch)}}
	w.coefficients = make([]float64, size)

	for i := range size {
		x := 2*position(i, size) - 1
		w.coefficients[i] = 1 - x*x
	}
	return w
}
