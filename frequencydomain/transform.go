// Package frequencydomain converts windowed waveforms into spectra and
// estimates the dynamic range of a measurement setup.
package frequencydomain

import (
	"github.com/RyanBlaney/thz-tds/algorithms/spectral"
	"github.com/RyanBlaney/thz-tds/thz"
)

// TransformOption configures Transform.
type TransformOption func(*transformConfig)

type transformConfig struct {
	backend spectral.Backend
}

// WithBackend selects the FFT implementation.
func WithBackend(b spectral.Backend) TransformOption {
	return func(c *transformConfig) {
		c.backend = b
	}
}

// Transform returns the one-sided spectrum of w after zero-padding it to
// upsampling times its length. Padding only densifies the frequency grid;
// bins shared with the unpadded grid keep their values.
func Transform(w thz.Waveform, upsampling int, opts ...TransformOption) (thz.Spectrum, error) {
	cfg := transformConfig{backend: spectral.BackendGoDSP}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if upsampling < 1 {
		return thz.Spectrum{}, thz.Configurationf("upsampling must be >= 1, got %d", upsampling)
	}
	if err := w.Validate(); err != nil {
		return thz.Spectrum{}, err
	}

	n := w.Len() * upsampling
	padded := make([]float64, n)
	copy(padded, w.Amplitude)

	values, err := spectral.NewFFT(cfg.backend).ComputeOneSided(padded)
	if err != nil {
		return thz.Spectrum{}, err
	}

	dt := w.Spacing()
	df := 1 / (float64(n) * dt)
	freq := make([]float64, len(values))
	for k := range freq {
		freq[k] = float64(k) * df
	}

	return thz.Spectrum{
		Frequency:  freq,
		Values:     values,
		TimeOrigin: w.Time[0],
		Length:     n,
		Spacing:    dt,
	}, nil
}

// TransformBand is Transform restricted to [minFreq, maxFreq].
func TransformBand(w thz.Waveform, upsampling int, minFreq, maxFreq float64, opts ...TransformOption) (thz.Spectrum, error) {
	s, err := Transform(w, upsampling, opts...)
	if err != nil {
		return thz.Spectrum{}, err
	}
	return s.Band(minFreq, maxFreq)
}
