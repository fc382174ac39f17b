package windowing

import (
	"fmt"
	"strings"
)

// Type names a taper that can be applied around a pulse peak
type Type string

const (
	TypeRectangular Type = "rectangular"
	TypeHann        Type = "hann"
	TypeHamming     Type = "hamming"
	TypeBlackman    Type = "blackman"
	TypeTukey       Type = "tukey"
	TypeKaiser      Type = "kaiser"
	TypeBartlett    Type = "bartlett"
	TypeWelch       Type = "welch"

	TypeBlackmanHarris Type = "blackman_harris"
)

// DefaultTukeyAlpha is the taper fraction used when a Tukey window is
// requested by name
const DefaultTukeyAlpha = 0.5

// Window is a symmetric taper of fixed size. Coefficients peak at the center
// sample and fall toward the edges.
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	GetCoefficients() []float64
	GetSize() int
	GetType() string
}

// ParseType resolves a window name. "hanning" and "none" are accepted as
// aliases of hann and rectangular.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "rectangular", "boxcar", "identity":
		return TypeRectangular, nil
	case "hann", "hanning":
		return TypeHann, nil
	case "hamming":
		return TypeHamming, nil
	case "blackman":
		return TypeBlackman, nil
	case "tukey":
		return TypeTukey, nil
	case "kaiser":
		return TypeKaiser, nil
	case "bartlett", "triangular":
		return TypeBartlett, nil
	case "welch":
		return TypeWelch, nil
	case "blackman_harris", "blackman-harris", "blackmanharris":
		return TypeBlackmanHarris, nil
	default:
		return "", fmt.Errorf("unknown window type %q", name)
	}
}

// New creates a window of the given type and size
func New(t Type, size int) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be > 0: %d", size)
	}

	switch t {
	case TypeRectangular:
		return NewRectangular(size), nil
	case TypeHann:
		return NewHann(size), nil
	case TypeHamming:
		return NewHamming(size), nil
	case TypeBlackman:
		return NewBlackman(size), nil
	case TypeTukey:
		return NewTukey(size, DefaultTukeyAlpha), nil
	case TypeKaiser:
		return NewKaiser(size, DefaultKaiserBeta), nil
	case TypeBartlett:
		return NewBartlett(size), nil
	case TypeWelch:
		return NewWelch(size), nil
	case TypeBlackmanHarris:
		return NewBlackmanHarris(size), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", t)
	}
}

// taper carries the coefficients and the shared Apply logic
type taper struct {
	name         string
	coefficients []float64
}

// position returns the normalized position i/(size-1) in [0, 1]; a single
// sample window sits at the center
func position(i, size int) float64 {
	if size == 1 {
		return 0.5
	}
	return float64(i) / float64(size-1)
}

// Apply applies the window to a signal (creates new array)
func (t *taper) Apply(signal []float64) []float64 {
	if len(signal) != len(t.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	for i, c := range t.coefficients {
		windowed[i] = signal[i] * c
	}
	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (t *taper) ApplyInPlace(signal []float64) error {
	if len(signal) != len(t.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(t.coefficients))
	}

	for i, c := range t.coefficients {
		signal[i] *= c
	}
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (t *taper) GetCoefficients() []float64 {
	coeffs := make([]float64, len(t.coefficients))
	copy(coeffs, t.coefficients)
	return coeffs
}

// GetSize returns the window size
func (t *taper) GetSize() int {
	return len(t.coefficients)
}

// GetType returns the window type
func (t *taper) GetType() string {
	return t.name
}
