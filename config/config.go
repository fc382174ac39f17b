package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/RyanBlaney/thz-tds/algorithms/rootfind"
	"github.com/RyanBlaney/thz-tds/algorithms/spectral"
	"github.com/RyanBlaney/thz-tds/algorithms/windowing"
	"github.com/RyanBlaney/thz-tds/store"
	"github.com/RyanBlaney/thz-tds/thz"
)

// Config collects every tunable of a batch extraction.
type Config struct {
	Window       Window       `json:"window"`
	Transform    Transform    `json:"transform"`
	Solver       Solver       `json:"solver"`
	DynamicRange DynamicRange `json:"dynamic_range"`
	Store        Store        `json:"store"`
	Pipeline     Pipeline     `json:"pipeline"`
}

// Window configures the common time window applied before transforming.
type Window struct {
	Type      string  `json:"type"`       // any name windowing.ParseType accepts
	HalfWidth float64 `json:"half_width"` // ps

	// OffsetDuration, when positive, is the leading stretch (ps) of every
	// record averaged and subtracted as detector offset before windowing.
	OffsetDuration float64 `json:"offset_duration,omitempty"`
}

// Transform configures the spectral transform and the solve band.
type Transform struct {
	Upsampling   int     `json:"upsampling"`
	Backend      string  `json:"backend"`       // "go-dsp", "gonum"
	MinFrequency float64 `json:"min_frequency"` // THz, 0 = first non-zero bin
	MaxFrequency float64 `json:"max_frequency"` // THz, 0 = Nyquist

	PhaseOffsetCorrection bool `json:"phase_offset_correction"`
	GridResampling        bool `json:"grid_resampling,omitempty"`
}

// Solver bounds the per-frequency root-find.
type Solver struct {
	MaxIterations       int     `json:"max_iterations"`
	Tolerance           float64 `json:"tolerance"`
	MaxStep             float64 `json:"max_step"`
	FallbackTolerance   float64 `json:"fallback_tolerance"`
	FallbackEvaluations int     `json:"fallback_evaluations"`
	DisableFallback     bool    `json:"disable_fallback,omitempty"`

	Strategy string `json:"strategy"` // "sequential", "independent"
	Workers  int    `json:"workers"`  // independent strategy only, 0 = NumCPU
}

// DynamicRange configures the absorption ceiling estimate.
type DynamicRange struct {
	Enabled    bool    `json:"enabled"`
	SNR        float64 `json:"snr"`
	Upsampling int     `json:"upsampling"`

	// Noise selects the noise model: "tail", "band", "percentile", "constant".
	Noise        string  `json:"noise"`
	TailFraction float64 `json:"tail_fraction,omitempty"`
	BandMin      float64 `json:"band_min,omitempty"`
	BandMax      float64 `json:"band_max,omitempty"`
	Percentile   float64 `json:"percentile,omitempty"`
	Level        float64 `json:"level,omitempty"`
}

// Store configures the parquet measurement container read by
// pipeline.RunContainer and written by pipeline.Import.
type Store struct {
	Path        string `json:"path"`
	Compression string `json:"compression"` // "zstd", "snappy", "gzip"
}

// Pipeline configures the batch driver.
type Pipeline struct {
	Mode    string `json:"mode"` // "slab", "mixture"
	Workers int    `json:"workers"`

	SampleDataset    string `json:"sample_dataset"`
	ReferenceDataset string `json:"reference_dataset"`
	BaselineDataset  string `json:"baseline_dataset"`

	SampleThicknessKey    string `json:"sample_thickness_key"`
	ReferenceThicknessKey string `json:"reference_thickness_key"`

	// Mixture only.
	ReferenceIndex  float64 `json:"reference_index,omitempty"`
	EffectiveMedium string  `json:"effective_medium,omitempty"`
	VolumeFraction  float64 `json:"volume_fraction,omitempty"`

	AllOpticalConstants bool `json:"all_optical_constants"`
}

// Metadata keys read by the pipeline when none are configured.
const (
	DefaultSampleThicknessKey    = "Sample Thickness (mm)"
	DefaultReferenceThicknessKey = "Reference Thickness (mm)"
)

func DefaultConfig() Config {
	return Config{
		Window:       DefaultWindow(),
		Transform:    DefaultTransform(),
		Solver:       DefaultSolver(),
		DynamicRange: DefaultDynamicRange(),
		Store:        DefaultStore(),
		Pipeline:     DefaultPipeline(),
	}
}

func DefaultWindow() Window {
	return Window{
		Type:      "hann",
		HalfWidth: 10.0,
	}
}

func DefaultTransform() Transform {
	return Transform{
		Upsampling:            1,
		Backend:               "go-dsp",
		PhaseOffsetCorrection: true,
	}
}

// DefaultSolver mirrors rootfind.DefaultSettings with sequential seeding.
func DefaultSolver() Solver {
	s := rootfind.DefaultSettings()
	return Solver{
		MaxIterations:       s.MaxIterations,
		Tolerance:           s.Tolerance,
		MaxStep:             s.MaxStep,
		FallbackTolerance:   s.FallbackTolerance,
		FallbackEvaluations: s.FallbackEvaluations,
		Strategy:            "sequential",
	}
}

func DefaultDynamicRange() DynamicRange {
	return DynamicRange{
		SNR:          1.0,
		Upsampling:   1,
		Noise:        "tail",
		TailFraction: 0.1,
	}
}

func DefaultStore() Store {
	return Store{
		Compression: "zstd",
	}
}

func DefaultPipeline() Pipeline {
	return Pipeline{
		Mode:                  "slab",
		Workers:               1,
		SampleDataset:         "Sample",
		ReferenceDataset:      "Reference",
		BaselineDataset:       "Baseline",
		SampleThicknessKey:    DefaultSampleThicknessKey,
		ReferenceThicknessKey: DefaultReferenceThicknessKey,
		EffectiveMedium:       "volume-average",
	}
}

// Settings converts the solver bounds for the rootfind package.
func (s Solver) Settings() rootfind.Settings {
	return rootfind.Settings{
		MaxIterations:       s.MaxIterations,
		Tolerance:           s.Tolerance,
		MaxStep:             s.MaxStep,
		FallbackTolerance:   s.FallbackTolerance,
		FallbackEvaluations: s.FallbackEvaluations,
		DisableFallback:     s.DisableFallback,
	}
}

// Load reads a JSON configuration file. Fields missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a JSON configuration over DefaultConfig and validates it.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, thz.Configurationf("invalid config json: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for _, v := range []interface{ Validate() error }{
		c.Window, c.Transform, c.Solver, c.DynamicRange, c.Store, c.Pipeline,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (w Window) Validate() error {
	if _, err := windowing.ParseType(w.Type); err != nil {
		return thz.Configurationf("window.type: %v", err)
	}
	if !positive(w.HalfWidth) {
		return thz.Configurationf("window.half_width must be positive, got %g", w.HalfWidth)
	}
	if w.OffsetDuration < 0 || math.IsInf(w.OffsetDuration, 0) {
		return thz.Configurationf("window.offset_duration must be >= 0, got %g", w.OffsetDuration)
	}
	return nil
}

func (t Transform) Validate() error {
	if t.Upsampling < 1 {
		return thz.Configurationf("transform.upsampling must be >= 1, got %d", t.Upsampling)
	}
	if _, err := spectral.ParseBackend(t.Backend); err != nil {
		return thz.Configurationf("transform.backend: %v", err)
	}
	if t.MinFrequency < 0 || t.MaxFrequency < 0 {
		return thz.Configurationf("transform frequencies must be >= 0")
	}
	if t.MaxFrequency > 0 && t.MaxFrequency < t.MinFrequency {
		return thz.Configurationf("transform.max_frequency %g below min_frequency %g", t.MaxFrequency, t.MinFrequency)
	}
	return nil
}

func (s Solver) Validate() error {
	if s.MaxIterations < 1 {
		return thz.Configurationf("solver.max_iterations must be >= 1, got %d", s.MaxIterations)
	}
	if !positive(s.Tolerance) || !positive(s.MaxStep) || !positive(s.FallbackTolerance) {
		return thz.Configurationf("solver tolerances and max_step must be positive")
	}
	if s.FallbackEvaluations < 1 {
		return thz.Configurationf("solver.fallback_evaluations must be >= 1, got %d", s.FallbackEvaluations)
	}
	switch s.Strategy {
	case "", "sequential", "independent":
	default:
		return thz.Configurationf("solver.strategy %q is not supported", s.Strategy)
	}
	if s.Workers < 0 {
		return thz.Configurationf("solver.workers must be >= 0, got %d", s.Workers)
	}
	return nil
}

func (d DynamicRange) Validate() error {
	if !positive(d.SNR) {
		return thz.Configurationf("dynamic_range.snr must be positive, got %g", d.SNR)
	}
	if d.Upsampling < 1 {
		return thz.Configurationf("dynamic_range.upsampling must be >= 1, got %d", d.Upsampling)
	}
	switch d.Noise {
	case "", "tail":
		if d.TailFraction < 0 || d.TailFraction > 1 {
			return thz.Configurationf("dynamic_range.tail_fraction must be in (0, 1], got %g", d.TailFraction)
		}
	case "band":
		if d.BandMin < 0 || d.BandMax <= d.BandMin {
			return thz.Configurationf("dynamic_range noise band [%g, %g] is invalid", d.BandMin, d.BandMax)
		}
	case "percentile":
		if d.Percentile < 0 || d.Percentile > 1 {
			return thz.Configurationf("dynamic_range.percentile must be in [0, 1], got %g", d.Percentile)
		}
	case "constant":
		if !positive(d.Level) {
			return thz.Configurationf("dynamic_range.level must be positive, got %g", d.Level)
		}
	default:
		return thz.Configurationf("dynamic_range.noise %q is not supported", d.Noise)
	}
	return nil
}

func (s Store) Validate() error {
	if err := store.ValidCompression(s.Compression); err != nil {
		return fmt.Errorf("store.compression: %w", err)
	}
	return nil
}

func (p Pipeline) Validate() error {
	switch p.Mode {
	case "slab":
	case "mixture":
		if p.VolumeFraction < 0 || p.VolumeFraction > 1 {
			return thz.Configurationf("pipeline.volume_fraction must be in (0, 1], got %g", p.VolumeFraction)
		}
		if p.ReferenceIndex < 0 {
			return thz.Configurationf("pipeline.reference_index must be positive, got %g", p.ReferenceIndex)
		}
	default:
		return thz.Configurationf("pipeline.mode %q is not supported", p.Mode)
	}
	if p.Workers < 0 {
		return thz.Configurationf("pipeline.workers must be >= 0, got %d", p.Workers)
	}
	if p.SampleDataset == "" || p.ReferenceDataset == "" {
		return thz.Configurationf("pipeline sample and reference dataset names are required")
	}
	if p.SampleThicknessKey == "" {
		return thz.Configurationf("pipeline.sample_thickness_key is required")
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
