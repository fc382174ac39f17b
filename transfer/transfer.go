// Package transfer recovers the complex refractive index of a material from
// the measured transfer function of a terahertz transmission measurement.
//
// A Model describes one measurement configuration (a uniform slab, or a
// binary mixture pellet compared against a host pellet) together with its
// measured transfer function. Solve inverts the model bin by bin. The
// UniformSlab and BinaryMixture helpers build the model from windowed
// waveforms and solve it in one call.
//
// Spectra use the e^{-i omega t} kernel, so internally a layer is described
// by its propagation index n - i*kappa. Results report n + i*kappa with
// kappa >= 0.
package transfer

import (
	"math"

	"github.com/RyanBlaney/thz-tds/logging"
	"github.com/RyanBlaney/thz-tds/thz"
)

// UniformSlab recovers the optical constants of a homogeneous slab of the
// given thickness (mm). Without a baseline H = S/R; with one, reference and
// baseline are taken as unobstructed pulses bracketing the sample and H is
// the geometric mean of S/R and S/B.
func UniformSlab(thickness float64, m Measurements, opts ...Option) (*thz.Result, error) {
	o := newOptions(opts)
	model, err := newSlab(thickness, m, o)
	if err != nil {
		return nil, err
	}
	return solve(model, o)
}

// BinaryMixture recovers the index of an inclusion dispersed in a host
// pellet of thickness sampleThickness (mm), compared against a pure host
// pellet of thickness referenceThickness (mm). The host index comes from
// WithReferenceIndex or, when a baseline is present, from solving the
// reference against the baseline as a slab.
func BinaryMixture(sampleThickness, referenceThickness float64, m Measurements, opts ...Option) (*thz.Result, error) {
	o := newOptions(opts)
	model, err := newMixture(sampleThickness, referenceThickness, m, o)
	if err != nil {
		return nil, err
	}
	return solve(model, o)
}

// NewSlab builds the slab model without solving it.
func NewSlab(thickness float64, m Measurements, opts ...Option) (*Slab, error) {
	return newSlab(thickness, m, newOptions(opts))
}

// NewMixture builds the mixture model without solving it. With a baseline
// and no reference index this solves the host slab.
func NewMixture(sampleThickness, referenceThickness float64, m Measurements, opts ...Option) (*Mixture, error) {
	return newMixture(sampleThickness, referenceThickness, m, newOptions(opts))
}

func newSlab(thickness float64, m Measurements, o options) (*Slab, error) {
	logger := o.logger.WithFields(logging.Fields{
		"component": "uniform_slab",
		"thickness": thickness,
		"baseline":  m.HasBaseline(),
	})

	if err := validThickness("thickness", thickness); err != nil {
		return nil, err
	}

	waveforms := []thz.Waveform{m.Reference, m.Sample}
	if m.HasBaseline() {
		waveforms = append(waveforms, m.Baseline)
	}
	spec, err := spectra(o, waveforms...)
	if err != nil {
		logger.Error(err, "Failed to transform measurements")
		return nil, err
	}
	lo, hi, err := band(spec[0], o)
	if err != nil {
		return nil, err
	}

	full := logRatio(spec[1], spec[0])
	if m.HasBaseline() {
		full = average(full, logRatio(spec[1], spec[2]))
	}
	meas := newMeasured(spec[0].Frequency, full, lo, hi, o.offsetCorrection)

	logger.Debug("Built slab model", logging.Fields{
		"bins":         meas.Len(),
		"phase_offset": meas.Offset,
	})
	return &Slab{thickness: thickness, measured: meas}, nil
}

func newMixture(ds, dr float64, m Measurements, o options) (*Mixture, error) {
	logger := o.logger.WithFields(logging.Fields{
		"component":           "binary_mixture",
		"sample_thickness":    ds,
		"reference_thickness": dr,
		"rule":                o.medium.Name(),
		"baseline":            m.HasBaseline(),
	})

	if err := validThickness("sample thickness", ds); err != nil {
		return nil, err
	}
	if err := validThickness("reference thickness", dr); err != nil {
		return nil, err
	}

	fraction := (ds - dr) / ds
	if o.fractionSet {
		fraction = o.fraction
	}
	if !(fraction > 0 && fraction <= 1) {
		return nil, thz.Configurationf("inclusion volume fraction must be in (0, 1], got %g", fraction)
	}

	if !o.referenceSet && !m.HasBaseline() {
		return nil, thz.Configurationf("binary mixture needs a reference index or a baseline")
	}
	if o.referenceSet && !(real(o.referenceIndex) > 0) {
		return nil, thz.Configurationf("reference index must have a positive real part, got %v", o.referenceIndex)
	}

	waveforms := []thz.Waveform{m.Reference, m.Sample}
	if !o.referenceSet {
		waveforms = append(waveforms, m.Baseline)
	}
	spec, err := spectra(o, waveforms...)
	if err != nil {
		logger.Error(err, "Failed to transform measurements")
		return nil, err
	}
	lo, hi, err := band(spec[0], o)
	if err != nil {
		return nil, err
	}

	mix := &Mixture{
		sampleThickness:    ds,
		referenceThickness: dr,
		fraction:           fraction,
		rule:               o.medium,
		measured:           newMeasured(spec[0].Frequency, logRatio(spec[1], spec[0]), lo, hi, o.offsetCorrection),
	}

	if o.referenceSet {
		mix.host = make([]complex128, hi-lo)
		for i := range mix.host {
			mix.host[i] = o.referenceIndex
		}
	} else {
		host := &Slab{
			thickness: dr,
			measured:  newMeasured(spec[0].Frequency, logRatio(spec[0], spec[2]), lo, hi, o.offsetCorrection),
		}
		res, err := solve(host, o)
		if err != nil {
			return nil, err
		}
		if len(res.Failures) > 0 {
			logger.Warn("Host index did not converge at every bin", logging.Fields{"failed": len(res.Failures)})
		}
		mix.host = res.RefractiveIndex
	}

	logger.Debug("Built mixture model", logging.Fields{
		"bins":     mix.measured.Len(),
		"fraction": fraction,
	})
	return mix, nil
}

func validThickness(name string, d float64) error {
	if !(d > 0) || math.IsInf(d, 0) {
		return thz.Configurationf("%s must be positive, got %g mm", name, d)
	}
	return nil
}
