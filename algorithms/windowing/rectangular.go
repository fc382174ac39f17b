package windowing

// Rectangular is the identity taper: every coefficient is 1
type Rectangular struct {
	taper
}

// NewRectangular creates a new rectangular window
func NewRectangular(size int) *Rectangular {
	r := &Rectangular{taper{name: string(TypeRectangular)}}
	r.coefficients = make([]float64, size)
	for i := range r.coefficients {
		r.coefficients[i] = 1.0
	}
	return r
}

// Apply returns a copy of the signal
func (r *Rectangular) Apply(signal []float64) []float64 {
	if len(signal) != len(r.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	copy(windowed, signal)
	return windowed
}
