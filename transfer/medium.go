package transfer

import (
	"fmt"
	"math/cmplx"
	"strings"
)

// EffectiveMedium combines the refractive indices of a host and an inclusion
// occupying volume fraction f into the index of the mixture. Unmix inverts
// Mix for the inclusion index.
type EffectiveMedium interface {
	Name() string
	Mix(host, inclusion complex128, f float64) complex128
	Unmix(host, effective complex128, f float64) complex128
}

// VolumeAverage interpolates the refractive index linearly in f.
type VolumeAverage struct{}

// MaxwellGarnett treats the inclusion as dilute spheres in the host.
type MaxwellGarnett struct{}

// Bruggeman treats host and inclusion symmetrically.
type Bruggeman struct{}

// Looyenga averages the cube roots of the dielectric constants.
type Looyenga struct{}

// ParseEffectiveMedium resolves a rule by name. An empty name selects
// VolumeAverage.
func ParseEffectiveMedium(name string) (EffectiveMedium, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "volume-average", "volume_average", "linear":
		return VolumeAverage{}, nil
	case "maxwell-garnett", "maxwell_garnett", "mg":
		return MaxwellGarnett{}, nil
	case "bruggeman":
		return Bruggeman{}, nil
	case "looyenga", "lll":
		return Looyenga{}, nil
	default:
		return nil, fmt.Errorf("unknown effective medium rule %q", name)
	}
}

func (VolumeAverage) Name() string { return "volume-average" }

func (VolumeAverage) Mix(host, inclusion complex128, f float64) complex128 {
	return complex(f, 0)*inclusion + complex(1-f, 0)*host
}

func (VolumeAverage) Unmix(host, effective complex128, f float64) complex128 {
	return (effective - complex(1-f, 0)*host) / complex(f, 0)
}

func (MaxwellGarnett) Name() string { return "maxwell-garnett" }

func (MaxwellGarnett) Mix(host, inclusion complex128, f float64) complex128 {
	eh, ei := host*host, inclusion*inclusion
	y := complex(f, 0) * (ei - eh) / (ei + 2*eh)
	return cmplx.Sqrt(eh * (1 + 2*y) / (1 - y))
}

func (MaxwellGarnett) Unmix(host, effective complex128, f float64) complex128 {
	eh, ee := host*host, effective*effective
	y := (ee - eh) / (ee + 2*eh) / complex(f, 0)
	return cmplx.Sqrt(eh * (1 + 2*y) / (1 - y))
}

func (Bruggeman) Name() string { return "bruggeman" }

// Mix solves 2*ee^2 - b*ee - ei*eh = 0 and keeps the root with the larger
// real part.
func (Bruggeman) Mix(host, inclusion complex128, f float64) complex128 {
	eh, ei := host*host, inclusion*inclusion
	b := complex(3*f-1, 0)*ei + complex(2-3*f, 0)*eh
	d := cmplx.Sqrt(b*b + 8*ei*eh)

	ee := (b + d) / 4
	if alt := (b - d) / 4; real(alt) > real(ee) {
		ee = alt
	}
	return cmplx.Sqrt(ee)
}

func (Bruggeman) Unmix(host, effective complex128, f float64) complex128 {
	eh, ee := host*host, effective*effective
	a := complex(1-f, 0) * (eh - ee) / (eh + 2*ee)
	fc := complex(f, 0)
	return cmplx.Sqrt(ee * (fc - 2*a) / (fc + a))
}

func (Looyenga) Name() string { return "looyenga" }

func (Looyenga) Mix(host, inclusion complex128, f float64) complex128 {
	c := complex(f, 0)*cubeRoot(inclusion*inclusion) + complex(1-f, 0)*cubeRoot(host*host)
	return cmplx.Sqrt(c * c * c)
}

func (Looyenga) Unmix(host, effective complex128, f float64) complex128 {
	c := (cubeRoot(effective*effective) - complex(1-f, 0)*cubeRoot(host*host)) / complex(f, 0)
	return cmplx.Sqrt(c * c * c)
}

// cubeRoot returns the principal cube root.
func cubeRoot(z complex128) complex128 {
	if z == 0 {
		return 0
	}
	return cmplx.Pow(z, 1.0/3)
}
