// Package filters removes unwanted components from sampled pulses before
// they are windowed and transformed.
package filters

import (
	"gonum.org/v1/gonum/floats"
)

// DCRemoval subtracts a constant detector offset from a record. The offset
// is the mean of the leading samples, which precede the pulse and hold only
// the offset and noise.
type DCRemoval struct {
	leading int
}

// NewDCRemoval creates a filter estimating the offset from the first
// leading samples. Zero or a count beyond the record uses every sample.
func NewDCRemoval(leading int) *DCRemoval {
	return &DCRemoval{leading: max(leading, 0)}
}

// Offset returns the mean of the leading samples of signal, or 0 for an
// empty signal.
func (dc *DCRemoval) Offset(signal []float64) float64 {
	n := len(signal)
	if dc.leading > 0 && dc.leading < n {
		n = dc.leading
	}
	if n == 0 {
		return 0
	}
	return floats.Sum(signal[:n]) / float64(n)
}

// ProcessBuffer returns a copy of input with the offset removed.
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	copy(output, input)
	floats.AddConst(-dc.Offset(input), output)
	return output
}

// GetLeading returns the number of samples the offset is averaged over.
func (dc *DCRemoval) GetLeading() int {
	return dc.leading
}
