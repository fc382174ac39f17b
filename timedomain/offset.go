package timedomain

import (
	"math"

	"github.com/RyanBlaney/thz-tds/algorithms/filters"
	"github.com/RyanBlaney/thz-tds/thz"
)

// RemoveOffset subtracts the detector offset, estimated as the mean
// amplitude over the first duration ps of the record, from every sample.
// The time axis is unchanged.
func RemoveOffset(w thz.Waveform, duration float64) (thz.Waveform, error) {
	if err := w.Validate(); err != nil {
		return thz.Waveform{}, err
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return thz.Waveform{}, thz.Configurationf("offset duration must be positive, got %g ps", duration)
	}

	n := HalfWidthSamples(duration, w.Spacing()) + 1
	if n > w.Len() {
		return thz.Waveform{}, thz.OutOfRangef("offset duration %g ps exceeds record length %g ps", duration, w.Duration())
	}

	out := w.Clone()
	out.Amplitude = filters.NewDCRemoval(n).ProcessBuffer(w.Amplitude)
	return out, nil
}
