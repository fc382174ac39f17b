package frequencydomain

import (
	"math"

	"github.com/RyanBlaney/thz-tds/algorithms/common"
	"github.com/RyanBlaney/thz-tds/logging"
	"github.com/RyanBlaney/thz-tds/thz"
)

// Query selects what FindDynamicRange reports. It is one of Amax, Amaxd or
// Boundaries.
type Query interface {
	mode() thz.RangeMode
	validate(nFreq int) error
}

// Amax requests the maximum measurable absorption coefficient (cm^-1) of a
// sample of the given thickness (mm).
type Amax struct {
	Thickness float64
}

// Amaxd requests amax multiplied by thickness (cm^-1 mm). Dividing it by a
// thickness in mm gives amax for that thickness. It is ten times the
// dimensionless attenuation amax*d with d in cm, so divide by the thickness
// in cm and by ten when comparing against dimensionless amaxd tables.
type Amaxd struct{}

// Boundaries requests the frequency bands in which Absorption (cm^-1, one
// value per query frequency) exceeds amax for the given thickness (mm).
type Boundaries struct {
	Thickness  float64
	Absorption []float64
}

func (Amax) mode() thz.RangeMode       { return thz.ModeAmax }
func (Amaxd) mode() thz.RangeMode      { return thz.ModeAmaxd }
func (Boundaries) mode() thz.RangeMode { return thz.ModeBoundaries }

func (q Amax) validate(int) error {
	return validateThickness(q.Thickness)
}

func (Amaxd) validate(int) error { return nil }

func (q Boundaries) validate(nFreq int) error {
	if err := validateThickness(q.Thickness); err != nil {
		return err
	}
	if len(q.Absorption) != nFreq {
		return thz.ShapeMismatchf("absorption coefficient has %d values for %d frequencies", len(q.Absorption), nFreq)
	}
	return nil
}

func validateThickness(t float64) error {
	if !(t > 0) || math.IsInf(t, 0) {
		return thz.Configurationf("thickness must be positive, got %g mm", t)
	}
	return nil
}

// RangeOption configures FindDynamicRange.
type RangeOption func(*rangeConfig)

type rangeConfig struct {
	noise      NoiseModel
	upsampling int
	transform  []TransformOption
	logger     logging.Logger
}

// WithNoiseModel replaces the default TailNoise estimate.
func WithNoiseModel(m NoiseModel) RangeOption {
	return func(c *rangeConfig) {
		if m != nil {
			c.noise = m
		}
	}
}

// WithRangeUpsampling zero-pads the baseline before transforming it.
func WithRangeUpsampling(u int) RangeOption {
	return func(c *rangeConfig) {
		c.upsampling = u
	}
}

// WithRangeTransform passes options to the baseline transform.
func WithRangeTransform(opts ...TransformOption) RangeOption {
	return func(c *rangeConfig) {
		c.transform = append(c.transform, opts...)
	}
}

// WithRangeLogger sets the logger used for diagnostics.
func WithRangeLogger(l logging.Logger) RangeOption {
	return func(c *rangeConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// FindDynamicRange estimates, from the baseline waveform alone, how much
// absorption is measurable at each of the given frequencies (THz) when the
// transmitted signal must stay snr times above the noise floor.
//
// refractiveIndex holds either one value or one value per frequency; it sets
// the reflection loss (1-R)^2 with R = ((n-1)/(n+1))^2. The dynamic range
// DR = |B(f)| / (snr * noise) bounds the single-pass attenuation:
//
//	amax * d = ln(DR^2 * (1-R)^2)
//
// with d in cm; results are clamped at zero where DR is too small.
func FindDynamicRange(baseline thz.Waveform, frequency, refractiveIndex []float64, snr float64, q Query, opts ...RangeOption) (*thz.DynamicRange, error) {
	cfg := rangeConfig{
		noise:      TailNoise{Fraction: DefaultTailFraction},
		upsampling: 1,
		logger:     logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if q == nil {
		return nil, thz.Configurationf("dynamic range query is required")
	}
	logger := cfg.logger.WithFields(logging.Fields{
		"component": "dynamic_range",
		"mode":      q.mode(),
		"noise":     cfg.noise.Name(),
	})

	if !(snr > 0) || math.IsInf(snr, 0) {
		return nil, thz.Configurationf("snr must be positive, got %g", snr)
	}
	if len(frequency) == 0 {
		return nil, thz.Configurationf("no frequencies given")
	}
	if len(refractiveIndex) != 1 && len(refractiveIndex) != len(frequency) {
		return nil, thz.ShapeMismatchf("refractive index has %d values for %d frequencies", len(refractiveIndex), len(frequency))
	}
	for _, n := range refractiveIndex {
		if !(n > 0) || math.IsInf(n, 0) {
			return nil, thz.Configurationf("refractive index must be positive, got %g", n)
		}
	}
	if err := q.validate(len(frequency)); err != nil {
		return nil, err
	}
	if _, ok := q.(Boundaries); ok {
		for i := 1; i < len(frequency); i++ {
			if !(frequency[i] > frequency[i-1]) {
				return nil, thz.Configurationf("boundaries need strictly increasing frequencies (index %d)", i)
			}
		}
	}

	spec, err := Transform(baseline, cfg.upsampling, cfg.transform...)
	if err != nil {
		logger.Error(err, "Baseline transform failed")
		return nil, err
	}
	nyquist := spec.Nyquist()
	for _, f := range frequency {
		if f < 0 || f > nyquist*(1+1e-12) || math.IsNaN(f) {
			return nil, thz.OutOfRangef("frequency %g THz outside baseline range [0, %g] THz", f, nyquist)
		}
	}

	floor, err := cfg.noise.Floor(spec)
	if err != nil {
		return nil, err
	}

	amplitude, err := common.NewInterpolator(spec.Frequency, spec.Magnitude())
	if err != nil {
		return nil, thz.Configurationf("baseline spectrum: %v", err)
	}
	noise, err := common.NewInterpolator(spec.Frequency, floor)
	if err != nil {
		return nil, thz.Configurationf("noise floor: %v", err)
	}

	amaxd := make([]float64, len(frequency))
	for i, f := range frequency {
		n := refractiveIndex[0]
		if len(refractiveIndex) > 1 {
			n = refractiveIndex[i]
		}
		amaxd[i] = maxAttenuation(amplitude.At(f), noise.At(f), snr, n)
	}

	out := &thz.DynamicRange{
		Mode:      q.mode(),
		Frequency: append([]float64(nil), frequency...),
	}

	switch query := q.(type) {
	case Amaxd:
		out.Values = amaxd
	case Amax:
		out.Values = divide(amaxd, query.Thickness)
	case Boundaries:
		out.Boundaries = exceedances(frequency, query.Absorption, divide(amaxd, query.Thickness))
	}

	logger.Debug("Dynamic range computed", logging.Fields{
		"frequencies": len(frequency),
		"boundaries":  len(out.Boundaries),
	})
	return out, nil
}

// maxAttenuation returns amax*d in cm^-1 mm for one frequency.
func maxAttenuation(signal, noise, snr, n float64) float64 {
	dr := signal / (snr * noise)
	r := (n - 1) / (n + 1)
	loss := 1 - r*r

	v := thz.MillimetresPerCentimetre * math.Log(dr*dr*loss*loss)
	if !(v > 0) {
		return 0
	}
	return v
}

func divide(values []float64, d float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / d
	}
	return out
}

// exceedances returns the maximal runs of bins where absorption > amax as
// [first, last] frequency pairs. NaN absorption never exceeds.
func exceedances(frequency, absorption, amax []float64) [][2]float64 {
	var out [][2]float64
	start := -1
	for i := range frequency {
		over := absorption[i] > amax[i]
		switch {
		case over && start < 0:
			start = i
		case !over && start >= 0:
			out = append(out, [2]float64{frequency[start], frequency[i-1]})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, [2]float64{frequency[start], frequency[len(frequency)-1]})
	}
	return out
}
