package thz

import (
	"errors"
	"fmt"
)

// Field names used by Result.Fields.
const (
	FieldFrequency             = "frequency"
	FieldRefractiveIndex       = "refractive_index"
	FieldAbsorptionCoefficient = "absorption_coefficient"
	FieldTransmissionAmplitude = "transmission_amplitude"
	FieldTransmissionPhase     = "transmission_phase"
	FieldDielectricConstant    = "dielectric_constant"
	FieldExtinctionCoefficient = "extinction_coefficient"
)

// BinFailure records a frequency bin whose inversion did not converge.
type BinFailure struct {
	Index     int     `json:"index"`
	Frequency float64 `json:"frequency"`
	Err       error   `json:"-"`
}

func (b BinFailure) Error() string {
	return fmt.Sprintf("bin %d (%.4f THz): %v", b.Index, b.Frequency, b.Err)
}

func (b BinFailure) Unwrap() error {
	return b.Err
}

// Result holds the optical constants recovered on a frequency grid. Failed
// bins carry NaN index and absorption values and Converged[i] == false.
type Result struct {
	Frequency             []float64    `json:"frequency"`
	RefractiveIndex       []complex128 `json:"-"`
	AbsorptionCoefficient []float64    `json:"absorption_coefficient"`

	// Populated only when all optical constants are requested.
	TransmissionAmplitude []float64    `json:"transmission_amplitude,omitempty"`
	TransmissionPhase     []float64    `json:"transmission_phase,omitempty"`
	DielectricConstant    []complex128 `json:"-"`
	ExtinctionCoefficient []float64    `json:"extinction_coefficient,omitempty"`

	Converged []bool       `json:"converged"`
	Failures  []BinFailure `json:"failures,omitempty"`
}

// Len returns the number of frequency bins.
func (r *Result) Len() int {
	return len(r.Frequency)
}

// RealIndex returns the real (phase) refractive index per bin.
func (r *Result) RealIndex() []float64 {
	out := make([]float64, len(r.RefractiveIndex))
	for i, n := range r.RefractiveIndex {
		out[i] = real(n)
	}
	return out
}

// Err joins the per-bin convergence failures, or returns nil.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Fields returns the result as a mapping from field name to sequence. Only
// populated fields are present.
func (r *Result) Fields() map[string]any {
	fields := map[string]any{
		FieldFrequency:             r.Frequency,
		FieldRefractiveIndex:       r.RefractiveIndex,
		FieldAbsorptionCoefficient: r.AbsorptionCoefficient,
	}
	if r.TransmissionAmplitude != nil {
		fields[FieldTransmissionAmplitude] = r.TransmissionAmplitude
	}
	if r.TransmissionPhase != nil {
		fields[FieldTransmissionPhase] = r.TransmissionPhase
	}
	if r.DielectricConstant != nil {
		fields[FieldDielectricConstant] = r.DielectricConstant
	}
	if r.ExtinctionCoefficient != nil {
		fields[FieldExtinctionCoefficient] = r.ExtinctionCoefficient
	}
	return fields
}

// RangeMode selects the form of a dynamic range result.
type RangeMode string

const (
	ModeAmax       RangeMode = "amax"
	ModeAmaxd      RangeMode = "amaxd"
	ModeBoundaries RangeMode = "boundaries"
)

// DynamicRange is the outcome of a dynamic range estimate. Values is set for
// ModeAmax (cm^-1) and ModeAmaxd (cm^-1 mm); Boundaries for ModeBoundaries.
type DynamicRange struct {
	Mode       RangeMode    `json:"mode"`
	Frequency  []float64    `json:"frequency"`
	Values     []float64    `json:"values,omitempty"`
	Boundaries [][2]float64 `json:"boundaries,omitempty"`
}
