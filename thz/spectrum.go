package thz

import (
	"math/cmplx"
)

// Spectrum is the complex frequency-domain representation of a waveform on a
// uniform grid starting at 0 THz.
type Spectrum struct {
	Frequency []float64    `json:"frequency"`
	Values    []complex128 `json:"-"`

	// TimeOrigin is the time (ps) of the first transformed sample. Phases in
	// Values are relative to it.
	TimeOrigin float64 `json:"time_origin"`

	// Length is the transformed (zero-padded) sample count.
	Length int `json:"length"`

	// Spacing is the sample interval (ps) of the transformed waveform.
	Spacing float64 `json:"spacing"`
}

// Len returns the number of frequency bins.
func (s Spectrum) Len() int {
	return len(s.Values)
}

// Nyquist returns the highest frequency representable by the sampling.
func (s Spectrum) Nyquist() float64 {
	if s.Spacing <= 0 {
		return 0
	}
	return 1 / (2 * s.Spacing)
}

// Resolution returns the bin spacing in THz.
func (s Spectrum) Resolution() float64 {
	if s.Length <= 0 || s.Spacing <= 0 {
		return 0
	}
	return 1 / (float64(s.Length) * s.Spacing)
}

// Magnitude returns |X(f)| per bin.
func (s Spectrum) Magnitude() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = cmplx.Abs(v)
	}
	return out
}

// Phase returns the wrapped phase arg(X(f)) per bin.
func (s Spectrum) Phase() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = cmplx.Phase(v)
	}
	return out
}

// BandIndices returns the half-open index range [lo, hi) of bins whose
// frequency lies in [minFreq, maxFreq].
func (s Spectrum) BandIndices(minFreq, maxFreq float64) (lo, hi int, err error) {
	if minFreq < 0 || maxFreq < minFreq {
		return 0, 0, OutOfRangef("invalid band [%g, %g] THz", minFreq, maxFreq)
	}
	nyquist := s.Nyquist()
	if maxFreq > nyquist*(1+1e-12) {
		return 0, 0, OutOfRangef("band [%g, %g] THz exceeds Nyquist frequency %g THz", minFreq, maxFreq, nyquist)
	}

	lo = len(s.Frequency)
	for i, f := range s.Frequency {
		if f >= minFreq {
			lo = i
			break
		}
	}
	hi = lo
	for hi < len(s.Frequency) && s.Frequency[hi] <= maxFreq {
		hi++
	}
	if hi <= lo {
		return 0, 0, OutOfRangef("band [%g, %g] THz contains no frequency bins", minFreq, maxFreq)
	}
	return lo, hi, nil
}

// Band returns a copy of the spectrum restricted to [minFreq, maxFreq].
func (s Spectrum) Band(minFreq, maxFreq float64) (Spectrum, error) {
	lo, hi, err := s.BandIndices(minFreq, maxFreq)
	if err != nil {
		return Spectrum{}, err
	}

	out := s
	out.Frequency = append([]float64(nil), s.Frequency[lo:hi]...)
	out.Values = append([]complex128(nil), s.Values[lo:hi]...)
	return out, nil
}
