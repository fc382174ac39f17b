package frequencydomain

import (
	"math"

	"github.com/RyanBlaney/thz-tds/algorithms/common"
	"github.com/RyanBlaney/thz-tds/thz"
)

// NoiseModel estimates the spectral noise amplitude of a baseline spectrum.
// Floor returns one value per bin of s; a model with a single global level
// repeats it.
type NoiseModel interface {
	Floor(s thz.Spectrum) ([]float64, error)
	Name() string
}

// TailNoise averages |B| over the highest Fraction of bins, where the
// emitted pulse carries no power.
type TailNoise struct {
	Fraction float64
}

// DefaultTailFraction is the share of bins TailNoise averages over.
const DefaultTailFraction = 0.1

func (t TailNoise) Name() string { return "tail" }

func (t TailNoise) Floor(s thz.Spectrum) ([]float64, error) {
	frac := t.Fraction
	if frac == 0 {
		frac = DefaultTailFraction
	}
	if frac < 0 || frac > 1 {
		return nil, thz.Configurationf("tail noise fraction must be in (0, 1], got %g", frac)
	}

	mag := s.Magnitude()
	count := int(math.Ceil(frac * float64(len(mag))))
	if count < 1 {
		return nil, thz.Configurationf("tail noise needs at least one bin")
	}
	return constantFloor(common.Mean(mag[len(mag)-count:]), len(mag))
}

// BandNoise averages |B| over a frequency band known to contain no signal.
type BandNoise struct {
	Min float64
	Max float64
}

func (b BandNoise) Name() string { return "band" }

func (b BandNoise) Floor(s thz.Spectrum) ([]float64, error) {
	lo, hi, err := s.BandIndices(b.Min, b.Max)
	if err != nil {
		return nil, err
	}
	mag := s.Magnitude()
	return constantFloor(common.Mean(mag[lo:hi]), len(mag))
}

// PercentileNoise takes a quantile of |B| over the whole spectrum as the
// floor. Low percentiles track the noise-dominated bins.
type PercentileNoise struct {
	Percentile float64
}

func (p PercentileNoise) Name() string { return "percentile" }

func (p PercentileNoise) Floor(s thz.Spectrum) ([]float64, error) {
	if p.Percentile < 0 || p.Percentile > 1 {
		return nil, thz.Configurationf("noise percentile must be in [0, 1], got %g", p.Percentile)
	}
	return constantFloor(common.Percentile(s.Magnitude(), p.Percentile), s.Len())
}

// ConstantNoise uses a known noise amplitude, in the units of the baseline
// spectrum.
type ConstantNoise struct {
	Level float64
}

func (c ConstantNoise) Name() string { return "constant" }

func (c ConstantNoise) Floor(s thz.Spectrum) ([]float64, error) {
	return constantFloor(c.Level, s.Len())
}

func constantFloor(level float64, n int) ([]float64, error) {
	if !(level > 0) || math.IsInf(level, 0) {
		return nil, thz.Configurationf("noise floor must be positive and finite, got %g", level)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = level
	}
	return out, nil
}
