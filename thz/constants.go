// Package thz holds the time-domain waveforms, spectra and extracted optical
// constants shared by the analysis packages, with their units and errors.
package thz

import "math"

// Units used throughout the module: time in ps, frequency in THz, thickness
// in mm and absorption coefficients in cm^-1.
const (
	// SpeedOfLight in mm/ps.
	SpeedOfLight = 0.299792458

	// MillimetresPerCentimetre converts thickness in mm to cm.
	MillimetresPerCentimetre = 10.0
)

// AngularFrequency returns 2*pi*f in rad/ps for f in THz.
func AngularFrequency(f float64) float64 {
	return 2 * math.Pi * f
}

// AbsorptionCoefficient converts the extinction coefficient kappa at
// frequency f (THz) into the power absorption coefficient in cm^-1.
func AbsorptionCoefficient(f, kappa float64) float64 {
	return 4 * math.Pi * f * kappa / SpeedOfLight * MillimetresPerCentimetre
}
