package timedomain

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/thz-tds/algorithms/windowing"
	"github.com/RyanBlaney/thz-tds/thz"
)

const dt = 0.05 // ps

// pulse returns a Gaussian derivative pulse sampled n times, peaking near
// center (ps).
func pulse(n int, center float64) thz.Waveform {
	amp := make([]float64, n)
	for i := range amp {
		x := (float64(i)*dt - center) / 0.3
		amp[i] = -x * math.Exp(-x*x)
	}
	return thz.NewWaveform(0, dt, amp)
}

func TestCommonWindowShapes(t *testing.T) {
	in := []thz.Waveform{pulse(400, 5), pulse(400, 8)}
	out, err := CommonWindow(in, 2, windowing.TypeHann)
	if err != nil {
		t.Fatalf("CommonWindow() error = %v", err)
	}

	h := HalfWidthSamples(2, dt)
	if h != 40 {
		t.Fatalf("HalfWidthSamples() = %d, want 40", h)
	}
	for i, w := range out {
		if w.Len() != 2*h+1 {
			t.Fatalf("waveform %d: %d samples, want %d", i, w.Len(), 2*h+1)
		}
		if err := w.Validate(); err != nil {
			t.Fatalf("waveform %d invalid: %v", i, err)
		}
		// the peak sample is kept with weight 1 and keeps its time
		p := Peak(in[i])
		if w.Time[h] != in[i].Time[p] || w.Amplitude[h] != in[i].Amplitude[p] {
			t.Fatalf("waveform %d: center (%g, %g), want (%g, %g)",
				i, w.Time[h], w.Amplitude[h], in[i].Time[p], in[i].Amplitude[p])
		}
		if w.Amplitude[0] != 0 {
			t.Fatalf("waveform %d: Hann edge %g, want 0", i, w.Amplitude[0])
		}
	}

	if in[0].Amplitude[Peak(in[0])-h] == 0 {
		t.Fatal("input was modified")
	}
}

func TestCommonWindowIdempotent(t *testing.T) {
	in := []thz.Waveform{pulse(300, 6)}
	taper := windowing.NewHann(2*HalfWidthSamples(1.5, dt) + 1).GetCoefficients()

	once, err := CommonWindow(in, 1.5, windowing.TypeHann)
	if err != nil {
		t.Fatalf("first CommonWindow() error = %v", err)
	}
	twice, err := CommonWindow(once, 1.5, windowing.TypeHann)
	if err != nil {
		t.Fatalf("second CommonWindow() error = %v", err)
	}

	for i := range once[0].Time {
		if twice[0].Time[i] != once[0].Time[i] {
			t.Fatalf("time %d changed: %g -> %g", i, once[0].Time[i], twice[0].Time[i])
		}
		want := once[0].Amplitude[i] * taper[i]
		if math.Abs(twice[0].Amplitude[i]-want) > 1e-15 {
			t.Fatalf("amplitude %d = %g, want taper re-applied %g", i, twice[0].Amplitude[i], want)
		}
	}

	rect, err := CommonWindow(once, 1.5, windowing.TypeRectangular)
	if err != nil {
		t.Fatalf("rectangular CommonWindow() error = %v", err)
	}
	for i := range once[0].Amplitude {
		if rect[0].Amplitude[i] != once[0].Amplitude[i] {
			t.Fatalf("rectangular re-window changed sample %d", i)
		}
	}

	// a windowed record holds no data beyond its own half-width
	if _, err := CommonWindow(once, 2, windowing.TypeRectangular); !errors.Is(err, thz.ErrOutOfRange) {
		t.Fatalf("wider re-window error = %v, want %v", err, thz.ErrOutOfRange)
	}
}

func TestCommonWindowErrors(t *testing.T) {
	coarse := thz.NewWaveform(0, 2*dt, pulse(200, 5).Amplitude)

	tests := []struct {
		name      string
		in        []thz.Waveform
		halfWidth float64
		win       windowing.Type
		want      error
	}{
		{"no waveforms", nil, 1, windowing.TypeHann, thz.ErrConfiguration},
		{"zero half-width", []thz.Waveform{pulse(200, 5)}, 0, windowing.TypeHann, thz.ErrConfiguration},
		{"sub-sample half-width", []thz.Waveform{pulse(200, 5)}, dt / 2, windowing.TypeHann, thz.ErrConfiguration},
		{"unknown window", []thz.Waveform{pulse(200, 5)}, 1, windowing.Type("gaussian"), thz.ErrConfiguration},
		{"spacing mismatch", []thz.Waveform{pulse(200, 5), coarse}, 1, windowing.TypeHann, thz.ErrShapeMismatch},
		{"exceeds record end", []thz.Waveform{pulse(200, 5), pulse(200, 9)}, 1.5, windowing.TypeHann, thz.ErrOutOfRange},
		{"exceeds record start", []thz.Waveform{pulse(200, 0.5)}, 1, windowing.TypeHann, thz.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CommonWindow(tt.in, tt.halfWidth, tt.win)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CommonWindow() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemoveOffset(t *testing.T) {
	w := pulse(200, 5)
	for i := range w.Amplitude {
		w.Amplitude[i] += 0.3
	}

	out, err := RemoveOffset(w, 1)
	if err != nil {
		t.Fatalf("RemoveOffset() error = %v", err)
	}
	if out.Amplitude[0] > 1e-12 || out.Amplitude[0] < -1e-12 {
		t.Errorf("leading sample = %g, want 0", out.Amplitude[0])
	}
	for i := range w.Time {
		if out.Time[i] != w.Time[i] {
			t.Fatalf("time %d changed", i)
		}
		if d := w.Amplitude[i] - out.Amplitude[i]; math.Abs(d-0.3) > 1e-12 {
			t.Fatalf("sample %d shifted by %g, want 0.3", i, d)
		}
	}

	if _, err := RemoveOffset(w, 0); !errors.Is(err, thz.ErrConfiguration) {
		t.Errorf("RemoveOffset(0) error = %v, want %v", err, thz.ErrConfiguration)
	}
	if _, err := RemoveOffset(w, 100); !errors.Is(err, thz.ErrOutOfRange) {
		t.Errorf("RemoveOffset(100) error = %v, want %v", err, thz.ErrOutOfRange)
	}
}
