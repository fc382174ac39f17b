// Package pipeline runs the optical constant extraction over every
// measurement of a store.
package pipeline

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/RyanBlaney/thz-tds/algorithms/spectral"
	"github.com/RyanBlaney/thz-tds/algorithms/windowing"
	"github.com/RyanBlaney/thz-tds/config"
	"github.com/RyanBlaney/thz-tds/frequencydomain"
	"github.com/RyanBlaney/thz-tds/logging"
	"github.com/RyanBlaney/thz-tds/store"
	"github.com/RyanBlaney/thz-tds/thz"
	"github.com/RyanBlaney/thz-tds/timedomain"
	"github.com/RyanBlaney/thz-tds/transfer"
)

// Outcome is the result of one measurement. Err is set when the measurement
// could not be processed; Result may still carry per-bin failures.
type Outcome struct {
	Name         string
	Result       *thz.Result
	DynamicRange *thz.DynamicRange
	Err          error
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger   logging.Logger
	transfer []transfer.Option
}

func WithLogger(l logging.Logger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTransferOptions appends options passed to every inversion, after the
// ones derived from the configuration.
func WithTransferOptions(opts ...transfer.Option) Option {
	return func(o *runOptions) {
		o.transfer = append(o.transfer, opts...)
	}
}

// job is one measurement copied out of the store.
type job struct {
	index       int
	measurement store.Measurement
}

// Run processes every measurement of s and returns one Outcome per
// measurement in name order. Store failures and an invalid configuration
// abort the run; everything else is recorded per measurement.
func Run(s store.Store, cfg config.Config, opts ...Option) ([]Outcome, error) {
	o := runOptions{logger: logging.GetGlobalLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	logger := o.logger.WithFields(logging.Fields{
		"component": "pipeline",
		"mode":      cfg.Pipeline.Mode,
	})

	if s == nil {
		return nil, thz.Configurationf("store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	names, err := s.MeasurementNames()
	if err != nil {
		logger.Error(err, "Failed to list measurements")
		return nil, err
	}

	jobs := make([]job, len(names))
	for i, name := range names {
		m, err := s.Measurement(name)
		if err != nil {
			logger.Error(err, "Failed to read measurement", logging.Fields{"measurement": name})
			return nil, err
		}
		jobs[i] = job{index: i, measurement: m.Clone()}
	}

	outcomes := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return outcomes, nil
	}

	var wg sync.WaitGroup
	queue := make(chan job, len(jobs))

	workers := cfg.Pipeline.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	for range min(workers, len(jobs)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				outcomes[j.index] = process(j.measurement, cfg, o, logger)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, j := range jobs {
			queue <- j
		}
	}()

	wg.Wait()

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
		}
	}
	logger.Info("Pipeline completed", logging.Fields{
		"measurements": len(outcomes),
		"failed":       failed,
	})
	return outcomes, nil
}

// RunContainer opens the parquet container at cfg.Store.Path, runs every
// measurement in it and closes the container.
func RunContainer(cfg config.Config, opts ...Option) ([]Outcome, error) {
	if cfg.Store.Path == "" {
		return nil, thz.Configurationf("store.path is required")
	}

	var outcomes []Outcome
	err := store.With(func() (store.Store, error) {
		return store.OpenParquet(cfg.Store.Path)
	}, func(s store.Store) error {
		var err error
		outcomes, err = Run(s, cfg, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// Import writes measurements into the container at cfg.Path with the
// configured compression.
func Import(cfg config.Store, measurements []store.Measurement) error {
	if cfg.Path == "" {
		return thz.Configurationf("store.path is required")
	}
	return store.WriteParquet(cfg.Path, measurements, store.WithCompression(cfg.Compression))
}

func process(m store.Measurement, cfg config.Config, o runOptions, parent logging.Logger) Outcome {
	logger := parent.WithFields(logging.Fields{"measurement": m.Name})
	out := Outcome{Name: m.Name}

	fail := func(err error, msg string) Outcome {
		logger.Error(err, msg)
		out.Err = err
		return out
	}

	sample, err := m.Dataset(cfg.Pipeline.SampleDataset)
	if err != nil {
		return fail(err, "Sample dataset missing")
	}
	reference, err := m.Dataset(cfg.Pipeline.ReferenceDataset)
	if err != nil {
		return fail(err, "Reference dataset missing")
	}
	var baseline thz.Waveform
	hasBaseline := false
	if cfg.Pipeline.BaselineDataset != "" {
		if b, err := m.Dataset(cfg.Pipeline.BaselineDataset); err == nil && !b.Empty() {
			baseline, hasBaseline = b, true
		}
	}

	thickness, err := m.Number(cfg.Pipeline.SampleThicknessKey)
	if err != nil {
		return fail(err, "Sample thickness missing")
	}

	win, err := windowing.ParseType(cfg.Window.Type)
	if err != nil {
		return fail(thz.Configurationf("%v", err), "Invalid window")
	}
	waveforms := []thz.Waveform{sample, reference}
	if hasBaseline {
		waveforms = append(waveforms, baseline)
	}
	if cfg.Window.OffsetDuration > 0 {
		for i, w := range waveforms {
			if waveforms[i], err = timedomain.RemoveOffset(w, cfg.Window.OffsetDuration); err != nil {
				return fail(err, "Offset removal failed")
			}
		}
	}
	windowed, err := timedomain.CommonWindow(waveforms, cfg.Window.HalfWidth, win)
	if err != nil {
		return fail(err, "Windowing failed")
	}
	meas := transfer.Measurements{Sample: windowed[0], Reference: windowed[1]}
	if hasBaseline {
		meas.Baseline = windowed[2]
	}

	topts, err := transferOptions(cfg, windowed[1], o, logger)
	if err != nil {
		return fail(err, "Invalid transfer configuration")
	}

	switch cfg.Pipeline.Mode {
	case "mixture":
		dr, err := m.Number(cfg.Pipeline.ReferenceThicknessKey)
		if err != nil {
			return fail(err, "Reference thickness missing")
		}
		out.Result, err = transfer.BinaryMixture(thickness, dr, meas, topts...)
		if err != nil {
			return fail(err, "Binary mixture inversion failed")
		}
	default:
		out.Result, err = transfer.UniformSlab(thickness, meas, topts...)
		if err != nil {
			return fail(err, "Uniform slab inversion failed")
		}
	}

	if cfg.DynamicRange.Enabled {
		floorSource := meas.Reference
		if hasBaseline {
			floorSource = meas.Baseline
		}
		out.DynamicRange, err = boundaries(floorSource, thickness, out.Result, cfg.DynamicRange, logger)
		if err != nil {
			return fail(err, "Dynamic range estimate failed")
		}
	}

	logger.Debug("Measurement processed", logging.Fields{
		"bins":   out.Result.Len(),
		"failed": len(out.Result.Failures),
	})
	return out
}

// transferOptions maps the configuration onto transfer options. The band's
// upper edge defaults to the Nyquist frequency of the windowed reference.
func transferOptions(cfg config.Config, reference thz.Waveform, o runOptions, logger logging.Logger) ([]transfer.Option, error) {
	backend, err := spectral.ParseBackend(cfg.Transform.Backend)
	if err != nil {
		return nil, thz.Configurationf("%v", err)
	}

	opts := []transfer.Option{
		transfer.WithUpsampling(cfg.Transform.Upsampling),
		transfer.WithBackend(backend),
		transfer.WithSolver(cfg.Solver),
		transfer.WithLogger(logger),
	}

	if cfg.Transform.MinFrequency > 0 || cfg.Transform.MaxFrequency > 0 {
		hi := cfg.Transform.MaxFrequency
		if hi == 0 {
			hi = 1 / (2 * reference.Spacing())
		}
		opts = append(opts, transfer.WithBand(cfg.Transform.MinFrequency, hi))
	}
	if !cfg.Transform.PhaseOffsetCorrection {
		opts = append(opts, transfer.WithoutPhaseOffsetCorrection())
	}
	if cfg.Transform.GridResampling {
		opts = append(opts, transfer.WithGridResampling())
	}
	if cfg.Pipeline.AllOpticalConstants {
		opts = append(opts, transfer.WithAllOpticalConstants())
	}

	if cfg.Pipeline.Mode == "mixture" {
		rule, err := transfer.ParseEffectiveMedium(cfg.Pipeline.EffectiveMedium)
		if err != nil {
			return nil, thz.Configurationf("%v", err)
		}
		opts = append(opts, transfer.WithEffectiveMedium(rule))
		if cfg.Pipeline.ReferenceIndex > 0 {
			opts = append(opts, transfer.WithReferenceIndex(complex(cfg.Pipeline.ReferenceIndex, 0)))
		}
		if cfg.Pipeline.VolumeFraction > 0 {
			opts = append(opts, transfer.WithVolumeFraction(cfg.Pipeline.VolumeFraction))
		}
	}

	return append(opts, o.transfer...), nil
}

// boundaries locates the bands where the recovered absorption exceeds what
// the measurement can resolve.
func boundaries(floorSource thz.Waveform, thickness float64, r *thz.Result, cfg config.DynamicRange, logger logging.Logger) (*thz.DynamicRange, error) {
	noise, err := NoiseModel(cfg)
	if err != nil {
		return nil, err
	}

	// unconverged bins contribute no reflection loss
	index := r.RealIndex()
	for i, n := range index {
		if math.IsNaN(n) || !(n > 0) {
			index[i] = 1
		}
	}

	return frequencydomain.FindDynamicRange(
		floorSource,
		r.Frequency,
		index,
		cfg.SNR,
		frequencydomain.Boundaries{Thickness: thickness, Absorption: r.AbsorptionCoefficient},
		frequencydomain.WithNoiseModel(noise),
		frequencydomain.WithRangeUpsampling(cfg.Upsampling),
		frequencydomain.WithRangeLogger(logger),
	)
}

// NoiseModel builds the noise model named by the configuration.
func NoiseModel(cfg config.DynamicRange) (frequencydomain.NoiseModel, error) {
	switch cfg.Noise {
	case "", "tail":
		return frequencydomain.TailNoise{Fraction: cfg.TailFraction}, nil
	case "band":
		return frequencydomain.BandNoise{Min: cfg.BandMin, Max: cfg.BandMax}, nil
	case "percentile":
		return frequencydomain.PercentileNoise{Percentile: cfg.Percentile}, nil
	case "constant":
		return frequencydomain.ConstantNoise{Level: cfg.Level}, nil
	default:
		return nil, thz.Configurationf("unknown noise model %q", cfg.Noise)
	}
}

// Failed returns the outcomes that carry an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s: %v", o.Name, o.Err)
	case o.Result != nil:
		return fmt.Sprintf("%s: %d bins, %d unconverged", o.Name, o.Result.Len(), len(o.Result.Failures))
	default:
		return o.Name
	}
}
