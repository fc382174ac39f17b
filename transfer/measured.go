package transfer

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/thz-tds/algorithms/common"
	"github.com/RyanBlaney/thz-tds/frequencydomain"
	"github.com/RyanBlaney/thz-tds/thz"
)

// Measurements holds the waveforms of one measurement set. Baseline is
// optional; a zero-length Baseline means it is absent.
type Measurements struct {
	Sample    thz.Waveform
	Reference thz.Waveform
	Baseline  thz.Waveform
}

// HasBaseline reports whether a baseline waveform is present.
func (m Measurements) HasBaseline() bool {
	return m.Baseline.Len() > 0
}

// Measured is a measured transfer function restricted to the solve band.
type Measured struct {
	Frequency []float64

	// LogRatio is ln|H| + i*phase with the phase unwrapped from DC and
	// referenced to the time origins of the compared spectra.
	LogRatio []complex128

	// Start is the index of Frequency[0] on the full transform grid.
	Start int

	// Offset is the multiple of 2*pi removed from the phase.
	Offset float64
}

func (m *Measured) Len() int {
	return len(m.Frequency)
}

// Ratio returns H at bin k.
func (m *Measured) Ratio(k int) complex128 {
	return cmplx.Exp(m.LogRatio[k])
}

// Amplitude returns |H| per bin.
func (m *Measured) Amplitude() []float64 {
	out := make([]float64, len(m.LogRatio))
	for i, v := range m.LogRatio {
		out[i] = math.Exp(real(v))
	}
	return out
}

// Phase returns the unwrapped, referenced phase of H per bin.
func (m *Measured) Phase() []float64 {
	out := make([]float64, len(m.LogRatio))
	for i, v := range m.LogRatio {
		out[i] = imag(v)
	}
	return out
}

// AngularFrequency returns 2*pi*f at bin k in rad/ps.
func (m *Measured) AngularFrequency(k int) float64 {
	return thz.AngularFrequency(m.Frequency[k])
}

// spectra transforms waveforms and aligns every spectrum onto the grid of
// the first one.
func spectra(o options, waveforms ...thz.Waveform) ([]thz.Spectrum, error) {
	out := make([]thz.Spectrum, len(waveforms))
	for i, w := range waveforms {
		s, err := frequencydomain.Transform(w, o.upsampling, frequencydomain.WithBackend(o.backend))
		if err != nil {
			return nil, err
		}
		if i > 0 {
			if s, err = align(out[0], s, o.resample); err != nil {
				return nil, err
			}
		}
		out[i] = s
	}
	return out, nil
}

// align returns s on the frequency grid of ref.
func align(ref, s thz.Spectrum, resample bool) (thz.Spectrum, error) {
	if common.GridsMatch(ref.Frequency, s.Frequency) {
		return s, nil
	}
	if !resample {
		return thz.Spectrum{}, thz.ShapeMismatchf("spectrum grids differ: %d bins of %g THz vs %d bins of %g THz",
			s.Len(), s.Resolution(), ref.Len(), ref.Resolution())
	}

	values, err := common.ResampleComplex(s.Frequency, s.Values, ref.Frequency)
	if err != nil {
		return thz.Spectrum{}, thz.OutOfRangef("resampling spectrum: %v", err)
	}
	out := ref
	out.Values = values
	out.TimeOrigin = s.TimeOrigin
	return out, nil
}

// logRatio returns ln(num/den) on the full grid. The phase starts at zero
// in the DC bin, is unwrapped upward and shifted by the delay between the
// two time origins.
func logRatio(num, den thz.Spectrum) []complex128 {
	n := den.Len()
	amp := make([]float64, n)
	phase := make([]float64, n)
	for k := range n {
		r := num.Values[k] / den.Values[k]
		amp[k] = math.Log(cmplx.Abs(r))
		phase[k] = cmplx.Phase(r)
	}
	if n > 0 {
		phase[0] = 0
	}
	phase = common.UnwrapPhase(phase)

	delay := num.TimeOrigin - den.TimeOrigin
	out := make([]complex128, n)
	for k := range n {
		out[k] = complex(amp[k], phase[k]-2*math.Pi*den.Frequency[k]*delay)
	}
	return out
}

// band returns the half-open bin range solved on grid s. The DC bin is
// never part of it.
func band(s thz.Spectrum, o options) (lo, hi int, err error) {
	lo, hi = 1, s.Len()
	if o.bandSet {
		if lo, hi, err = s.BandIndices(o.minFrequency, o.maxFrequency); err != nil {
			return 0, 0, err
		}
		lo = max(lo, 1)
	}
	if hi <= lo {
		return 0, 0, thz.OutOfRangef("no non-zero frequency bins in band [%g, %g] THz", o.minFrequency, o.maxFrequency)
	}
	return lo, hi, nil
}

// newMeasured restricts a full-grid log ratio to [lo, hi) and optionally
// removes its 2*pi phase offset.
func newMeasured(freq []float64, full []complex128, lo, hi int, correctOffset bool) *Measured {
	m := &Measured{
		Frequency: append([]float64(nil), freq[lo:hi]...),
		LogRatio:  append([]complex128(nil), full[lo:hi]...),
		Start:     lo,
	}
	if !correctOffset {
		return m
	}

	var fitFreq, fitPhase []float64
	for i, p := range m.Phase() {
		if !math.IsNaN(p) && !math.IsInf(p, 0) {
			fitFreq = append(fitFreq, m.Frequency[i])
			fitPhase = append(fitPhase, p)
		}
	}
	m.Offset = common.PhaseOffset(fitFreq, fitPhase, 0, len(fitPhase))
	if m.Offset != 0 {
		for i, v := range m.LogRatio {
			m.LogRatio[i] = complex(real(v), imag(v)-m.Offset)
		}
	}
	return m
}

// average returns the element-wise mean of two log ratios.
func average(a, b []complex128) []complex128 {
	out := make([]complex128, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
