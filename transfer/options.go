package transfer

import (
	"fmt"
	"runtime"

	"github.com/RyanBlaney/thz-tds/algorithms/rootfind"
	"github.com/RyanBlaney/thz-tds/algorithms/spectral"
	"github.com/RyanBlaney/thz-tds/config"
	"github.com/RyanBlaney/thz-tds/logging"
)

// Strategy selects how the per-frequency root-finds are seeded.
type Strategy string

const (
	// StrategySequential walks the band upward and seeds each bin with the
	// root of the previous converged bin.
	StrategySequential Strategy = "sequential"
	// StrategyIndependent seeds every bin from the measured phase and solves
	// the bins on a pool of goroutines.
	StrategyIndependent Strategy = "independent"
)

// ParseStrategy resolves a strategy name. An empty name selects
// StrategySequential.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategySequential:
		return StrategySequential, nil
	case StrategyIndependent:
		return StrategyIndependent, nil
	default:
		return "", fmt.Errorf("unknown solver strategy %q", name)
	}
}

// Option configures model construction and solving.
type Option func(*options)

type options struct {
	upsampling int
	backend    spectral.Backend

	minFrequency float64
	maxFrequency float64
	bandSet      bool

	allConstants     bool
	resample         bool
	offsetCorrection bool

	solver   rootfind.Settings
	strategy Strategy
	workers  int
	logger   logging.Logger

	// Mixture only.
	fraction       float64
	fractionSet    bool
	referenceIndex complex128
	referenceSet   bool
	medium         EffectiveMedium
}

func newOptions(opts []Option) options {
	o := options{
		upsampling:       1,
		backend:          spectral.BackendGoDSP,
		offsetCorrection: true,
		solver:           rootfind.DefaultSettings(),
		strategy:         StrategySequential,
		logger:           logging.GetGlobalLogger(),
		medium:           VolumeAverage{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) workerCount(bins int) int {
	n := o.workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, bins))
}

// WithUpsampling zero-pads every waveform to u times its length before
// transforming.
func WithUpsampling(u int) Option {
	return func(o *options) {
		o.upsampling = u
	}
}

// WithBackend selects the FFT implementation.
func WithBackend(b spectral.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBand restricts the solved bins to [minFreq, maxFreq] THz. The DC bin
// is skipped even when minFreq is 0.
func WithBand(minFreq, maxFreq float64) Option {
	return func(o *options) {
		o.minFrequency, o.maxFrequency, o.bandSet = minFreq, maxFreq, true
	}
}

// WithAllOpticalConstants adds transmission, dielectric and extinction
// values to the result.
func WithAllOpticalConstants() Option {
	return func(o *options) {
		o.allConstants = true
	}
}

// WithGridResampling linearly resamples spectra whose grids differ onto the
// reference grid instead of failing with a shape mismatch.
func WithGridResampling() Option {
	return func(o *options) {
		o.resample = true
	}
}

// WithoutPhaseOffsetCorrection keeps the unwrapped phase as measured instead
// of removing the 2*pi multiple found by a line fit over the band.
func WithoutPhaseOffsetCorrection() Option {
	return func(o *options) {
		o.offsetCorrection = false
	}
}

// WithSolver applies solver bounds, strategy and worker count from config.
// An unknown strategy name is ignored.
func WithSolver(s config.Solver) Option {
	return func(o *options) {
		o.solver = s.Settings()
		if st, err := ParseStrategy(s.Strategy); err == nil {
			o.strategy = st
		}
		o.workers = s.Workers
	}
}

// WithSettings sets the root-find bounds directly.
func WithSettings(s rootfind.Settings) Option {
	return func(o *options) {
		o.solver = s
	}
}

func WithStrategy(s Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

// WithWorkers bounds the goroutines used by StrategyIndependent. Zero uses
// one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithVolumeFraction overrides the inclusion fraction derived from the
// mixture and reference thicknesses.
func WithVolumeFraction(f float64) Option {
	return func(o *options) {
		o.fraction, o.fractionSet = f, true
	}
}

// WithReferenceIndex sets the complex refractive index n + i*kappa of the
// host material, used instead of solving it from a baseline.
func WithReferenceIndex(n complex128) Option {
	return func(o *options) {
		o.referenceIndex, o.referenceSet = n, true
	}
}

// WithEffectiveMedium selects the mixing rule of a binary mixture.
func WithEffectiveMedium(rule EffectiveMedium) Option {
	return func(o *options) {
		if rule != nil {
			o.medium = rule
		}
	}
}
