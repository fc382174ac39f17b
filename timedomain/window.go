// Package timedomain prepares raw terahertz waveforms for spectral analysis.
//
// CommonWindow cuts every waveform of a measurement to the same symmetric
// interval around its pulse peak and applies a taper, so that the spectra of
// sample, reference and baseline share one frequency grid and echoes outside
// the window are suppressed.
package timedomain

import (
	"math"

	"github.com/RyanBlaney/thz-tds/algorithms/common"
	"github.com/RyanBlaney/thz-tds/algorithms/windowing"
	"github.com/RyanBlaney/thz-tds/logging"
	"github.com/RyanBlaney/thz-tds/thz"
)

// Peak returns the index of the sample with the largest absolute amplitude.
// Ties resolve to the earliest sample.
func Peak(w thz.Waveform) int {
	return common.MaxAbsIndex(w.Amplitude)
}

// HalfWidthSamples converts a half-width in ps into a sample count for the
// given sample spacing.
func HalfWidthSamples(halfWidth, spacing float64) int {
	return int(math.Floor(halfWidth/spacing + 1e-9))
}

// CommonWindow extracts the interval [peak-halfWidth, peak+halfWidth] of
// every waveform and multiplies it by the selected taper. All waveforms must
// share one sample spacing; the returned waveforms all have 2h+1 samples and
// keep their absolute time axes. Inputs are never modified.
func CommonWindow(waveforms []thz.Waveform, halfWidth float64, win windowing.Type) ([]thz.Waveform, error) {
	logger := logging.WithFields(logging.Fields{
		"component":  "common_window",
		"waveforms":  len(waveforms),
		"half_width": halfWidth,
		"window":     win,
	})

	if len(waveforms) == 0 {
		return nil, thz.Configurationf("no waveforms to window")
	}
	if !(halfWidth > 0) || math.IsInf(halfWidth, 0) {
		return nil, thz.Configurationf("half-width must be positive, got %g", halfWidth)
	}

	for i, w := range waveforms {
		if err := w.Validate(); err != nil {
			logger.Error(err, "Invalid waveform", logging.Fields{"index": i})
			return nil, err
		}
		if i > 0 && !thz.SameSpacing(waveforms[0], w) {
			return nil, thz.ShapeMismatchf("waveform %d spacing %g ps differs from waveform 0 spacing %g ps",
				i, w.Spacing(), waveforms[0].Spacing())
		}
	}

	h := HalfWidthSamples(halfWidth, waveforms[0].Spacing())
	if h < 1 {
		return nil, thz.Configurationf("half-width %g ps is shorter than one sample (%g ps)", halfWidth, waveforms[0].Spacing())
	}
	size := 2*h + 1

	taper, err := windowing.New(win, size)
	if err != nil {
		return nil, thz.Configurationf("%v", err)
	}

	out := make([]thz.Waveform, len(waveforms))
	for i, w := range waveforms {
		peak := Peak(w)
		start, stop := peak-h, peak+h
		if start < 0 || stop >= w.Len() {
			err := thz.OutOfRangef("waveform %d: half-width %g ps around peak at %g ps exceeds record [%g, %g] ps",
				i, halfWidth, w.Time[peak], w.Time[0], w.Time[w.Len()-1])
			logger.Error(err, "Window does not fit the record", logging.Fields{"index": i, "peak": peak})
			return nil, err
		}

		time := make([]float64, size)
		copy(time, w.Time[start:stop+1])

		out[i] = thz.Waveform{
			Time:      time,
			Amplitude: taper.Apply(w.Amplitude[start : stop+1]),
		}
	}

	logger.Debug("Applied common window", logging.Fields{"samples": size})
	return out, nil
}
