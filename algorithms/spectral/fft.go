package spectral

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend selects the FFT implementation
type Backend int

const (
	// BackendGoDSP uses mjibson/go-dsp, which handles any length
	BackendGoDSP Backend = iota
	// BackendGonum uses gonum's dsp/fourier real transform
	BackendGonum
)

func (b Backend) String() string {
	switch b {
	case BackendGoDSP:
		return "go-dsp"
	case BackendGonum:
		return "gonum"
	default:
		return "unknown"
	}
}

// ParseBackend resolves a backend name as returned by Backend.String. An
// empty name selects go-dsp.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "", "go-dsp":
		return BackendGoDSP, nil
	case "gonum":
		return BackendGonum, nil
	default:
		return 0, fmt.Errorf("unknown FFT backend %q", name)
	}
}

// FFT provides the real-input Fast Fourier Transform used by the spectral
// transform
type FFT struct {
	backend Backend
}

// NewFFT creates a new FFT calculator
func NewFFT(backend Backend) *FFT {
	return &FFT{backend: backend}
}

// Backend returns the configured implementation
func (f *FFT) Backend() Backend {
	return f.backend
}

// ComputeOneSided transforms a real sequence and returns the non-negative
// frequency bins 0..len(x)/2, using the e^{-i 2 pi k n / N} kernel
func (f *FFT) ComputeOneSided(x []float64) ([]complex128, error) {
	if len(x) == 0 {
		return []complex128{}, nil
	}

	bins := len(x)/2 + 1

	switch f.backend {
	case BackendGoDSP:
		// go-dsp handles all sizes, including non-power-of-2
		full := fft.FFTReal(x)
		out := make([]complex128, bins)
		copy(out, full[:bins])
		return out, nil

	case BackendGonum:
		coeffs := fourier.NewFFT(len(x)).Coefficients(nil, x)
		if len(coeffs) != bins {
			return nil, fmt.Errorf("gonum fft returned %d bins, want %d", len(coeffs), bins)
		}
		return coeffs, nil

	default:
		return nil, fmt.Errorf("unknown fft backend %d", f.backend)
	}
}

// ComputeInverseReal reconstructs a real sequence of length n from its
// one-sided spectrum
func (f *FFT) ComputeInverseReal(bins []complex128, n int) ([]float64, error) {
	if n <= 0 {
		return []float64{}, nil
	}
	if len(bins) != n/2+1 {
		return nil, fmt.Errorf("one-sided spectrum has %d bins, want %d for length %d", len(bins), n/2+1, n)
	}

	switch f.backend {
	case BackendGonum:
		seq := fourier.NewFFT(n).Sequence(nil, bins)
		// gonum leaves the result scaled by n
		for i := range seq {
			seq[i] /= float64(n)
		}
		return seq, nil

	default:
		full := make([]complex128, n)
		copy(full, bins)
		for k := 1; k < n-len(bins)+1; k++ {
			full[n-k] = complexConj(bins[k])
		}
		result := fft.IFFT(full)
		out := make([]float64, n)
		for i, v := range result {
			out[i] = real(v)
		}
		return out, nil
	}
}

func complexConj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}
