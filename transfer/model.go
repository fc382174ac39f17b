package transfer

import (
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/thz-tds/thz"
)

// Model predicts the transfer function of a measurement configuration for a
// candidate refractive index n + i*kappa (kappa >= 0) at a bin of its
// measured band.
type Model interface {
	Predict(n complex128, bin int) complex128

	// LogPredict returns ln|T| + i*phase with a phase continuous in n, so
	// that it can be compared against Measured().LogRatio.
	LogPredict(n complex128, bin int) complex128

	// InitialGuess seeds the root-find at bin from the measured phase and
	// amplitude.
	InitialGuess(bin int) complex128

	Measured() *Measured
}

// minRealIndex keeps iterates away from the Fresnel singularity at n = 0.
const minRealIndex = 1e-3

// logLayer returns the log transfer function, relative to air, of a layer of
// thickness d (mm) with propagation index nt = n - i*kappa at angular
// frequency omega (rad/ps): ln(4nt/(1+nt)^2) - i*omega*d*(nt-1)/c.
func logLayer(nt complex128, omega, d float64) complex128 {
	fresnel := cmplx.Log(4 * nt / ((1 + nt) * (1 + nt)))
	return fresnel - complex(0, omega*d/thz.SpeedOfLight)*(nt-1)
}

// seedIndex estimates the index of a layer of thickness d from the phase
// and log amplitude it adds to a transmitted pulse, ignoring the Fresnel
// phase.
func seedIndex(logH complex128, omega, d float64) complex128 {
	k := thz.SpeedOfLight / (omega * d)

	n := 1 - imag(logH)*k
	if !(n > minRealIndex) {
		n = 1
	}
	fresnel := math.Log(4 * n / ((1 + n) * (1 + n)))
	kappa := (fresnel - real(logH)) * k
	if !(kappa > 0) {
		kappa = 0
	}
	return complex(n, kappa)
}

// Slab is a single homogeneous parallel-sided layer of known thickness.
type Slab struct {
	thickness float64
	measured  *Measured
}

// Thickness returns the slab thickness in mm.
func (s *Slab) Thickness() float64 {
	return s.thickness
}

func (s *Slab) Measured() *Measured {
	return s.measured
}

func (s *Slab) LogPredict(n complex128, bin int) complex128 {
	return logLayer(cmplx.Conj(n), s.measured.AngularFrequency(bin), s.thickness)
}

func (s *Slab) Predict(n complex128, bin int) complex128 {
	return cmplx.Exp(s.LogPredict(n, bin))
}

func (s *Slab) InitialGuess(bin int) complex128 {
	return seedIndex(s.measured.LogRatio[bin], s.measured.AngularFrequency(bin), s.thickness)
}

// Mixture is a pellet of host material with an inclusion of unknown index,
// compared against a pure host pellet.
type Mixture struct {
	sampleThickness    float64
	referenceThickness float64
	fraction           float64
	rule               EffectiveMedium

	// host is the physical host index per bin of the measured band.
	host     []complex128
	measured *Measured
}

// Fraction returns the inclusion volume fraction.
func (m *Mixture) Fraction() float64 {
	return m.fraction
}

// Host returns the host index used at bin.
func (m *Mixture) Host(bin int) complex128 {
	return m.host[bin]
}

func (m *Mixture) Rule() EffectiveMedium {
	return m.rule
}

func (m *Mixture) Measured() *Measured {
	return m.measured
}

// LogPredict returns the log of the mixture pellet transfer function divided
// by that of the host pellet, with n the inclusion index.
func (m *Mixture) LogPredict(n complex128, bin int) complex128 {
	omega := m.measured.AngularFrequency(bin)
	host := m.host[bin]
	eff := m.rule.Mix(host, n, m.fraction)
	return logLayer(cmplx.Conj(eff), omega, m.sampleThickness) -
		logLayer(cmplx.Conj(host), omega, m.referenceThickness)
}

func (m *Mixture) Predict(n complex128, bin int) complex128 {
	return cmplx.Exp(m.LogPredict(n, bin))
}

// InitialGuess estimates the effective index from the extra optical path of
// the mixture pellet and unmixes it.
func (m *Mixture) InitialGuess(bin int) complex128 {
	omega := m.measured.AngularFrequency(bin)
	host := m.host[bin]
	if cmplx.IsNaN(host) {
		return complex(1, 0)
	}

	k := thz.SpeedOfLight / omega
	logH := m.measured.LogRatio[bin]
	nEff := 1 + (-imag(logH)*k+m.referenceThickness*(real(host)-1))/m.sampleThickness
	kEff := (-real(logH)*k + m.referenceThickness*imag(host)) / m.sampleThickness
	if !(nEff > minRealIndex) {
		nEff = real(host)
	}
	kEff = math.Max(kEff, 0)

	seed := m.rule.Unmix(host, complex(nEff, kEff), m.fraction)
	if cmplx.IsNaN(seed) || cmplx.IsInf(seed) || !(real(seed) > minRealIndex) {
		return complex(nEff, kEff)
	}
	return complex(real(seed), math.Max(imag(seed), 0))
}
