package frequencydomain

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/thz-tds/thz"
)

func rangeFrequencies(t *testing.T, baseline thz.Waveform, lo, hi float64) []float64 {
	t.Helper()
	s, err := TransformBand(baseline, 1, lo, hi)
	if err != nil {
		t.Fatalf("TransformBand() error = %v", err)
	}
	return s.Frequency
}

func TestFindDynamicRangeAmaxd(t *testing.T) {
	baseline := testPulse(200, 0.05, 4, 0.2)
	freq := rangeFrequencies(t, baseline, 0.2, 3)
	spec, err := Transform(baseline, 1)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	mag := spec.Magnitude()

	const level = 1e-3
	const snr = 2.0
	const n = 2.0

	dr, err := FindDynamicRange(baseline, freq, []float64{n}, snr, Amaxd{}, WithNoiseModel(ConstantNoise{Level: level}))
	if err != nil {
		t.Fatalf("FindDynamicRange() error = %v", err)
	}
	if dr.Mode != thz.ModeAmaxd {
		t.Fatalf("Mode = %q, want %q", dr.Mode, thz.ModeAmaxd)
	}
	if len(dr.Values) != len(freq) {
		t.Fatalf("got %d values, want %d", len(dr.Values), len(freq))
	}

	r := (n - 1) / (n + 1)
	loss := 1 - r*r
	first := int(math.Round(freq[0] / spec.Resolution()))
	for i, v := range dr.Values {
		ratio := mag[first+i] / (snr * level)
		want := math.Max(0, 10*math.Log(ratio*ratio*loss*loss))
		if math.Abs(v-want) > 1e-6*math.Max(1, want) {
			t.Errorf("amaxd at %g THz = %g, want %g", freq[i], v, want)
		}
		if v < 0 {
			t.Errorf("amaxd at %g THz is negative: %g", freq[i], v)
		}
	}
}

func TestFindDynamicRangeAmaxScalesWithThickness(t *testing.T) {
	baseline := testPulse(200, 0.05, 4, 0.2)
	freq := rangeFrequencies(t, baseline, 0.2, 3)
	index := make([]float64, len(freq))
	for i := range index {
		index[i] = 1.5 + 0.01*float64(i)
	}

	amaxd, err := FindDynamicRange(baseline, freq, index, 1, Amaxd{})
	if err != nil {
		t.Fatalf("FindDynamicRange(Amaxd) error = %v", err)
	}
	for _, d := range []float64{0.5, 1, 2.5} {
		amax, err := FindDynamicRange(baseline, freq, index, 1, Amax{Thickness: d})
		if err != nil {
			t.Fatalf("FindDynamicRange(Amax %g) error = %v", d, err)
		}
		if amax.Mode != thz.ModeAmax {
			t.Fatalf("Mode = %q, want %q", amax.Mode, thz.ModeAmax)
		}
		for i := range freq {
			if math.Abs(amax.Values[i]*d-amaxd.Values[i]) > 1e-9*math.Max(1, amaxd.Values[i]) {
				t.Fatalf("d=%g: amax*d = %g, want amaxd %g", d, amax.Values[i]*d, amaxd.Values[i])
			}
			// cm^-1 times cm is the dimensionless attenuation
			dimensionless := amax.Values[i] * d / thz.MillimetresPerCentimetre
			if math.Abs(amaxd.Values[i]/thz.MillimetresPerCentimetre-dimensionless) > 1e-9*math.Max(1, dimensionless) {
				t.Fatalf("d=%g: amaxd/10 = %g, want amax*d[cm] %g", d, amaxd.Values[i]/thz.MillimetresPerCentimetre, dimensionless)
			}
		}
	}
}

func TestFindDynamicRangeBoundaries(t *testing.T) {
	baseline := testPulse(200, 0.05, 4, 0.2)
	freq := rangeFrequencies(t, baseline, 0.2, 3)
	const d = 1.0

	amax, err := FindDynamicRange(baseline, freq, []float64{1.5}, 1, Amax{Thickness: d})
	if err != nil {
		t.Fatalf("FindDynamicRange(Amax) error = %v", err)
	}

	absorption := make([]float64, len(freq))
	for i := range absorption {
		absorption[i] = amax.Values[i] / 2
	}
	for _, i := range []int{2, 3, 4, 6, 7, len(freq) - 1} {
		absorption[i] = amax.Values[i] + 1
	}
	absorption[5] = math.NaN()

	dr, err := FindDynamicRange(baseline, freq, []float64{1.5}, 1, Boundaries{Thickness: d, Absorption: absorption})
	if err != nil {
		t.Fatalf("FindDynamicRange(Boundaries) error = %v", err)
	}
	want := [][2]float64{
		{freq[2], freq[4]},
		{freq[6], freq[7]},
		{freq[len(freq)-1], freq[len(freq)-1]},
	}
	if len(dr.Boundaries) != len(want) {
		t.Fatalf("Boundaries = %v, want %v", dr.Boundaries, want)
	}
	for i, b := range dr.Boundaries {
		if b != want[i] {
			t.Errorf("boundary %d = %v, want %v", i, b, want[i])
		}
		if b[0] > b[1] {
			t.Errorf("boundary %d is reversed: %v", i, b)
		}
		if i > 0 && !(b[0] > dr.Boundaries[i-1][1]) {
			t.Errorf("boundary %d overlaps previous: %v after %v", i, b, dr.Boundaries[i-1])
		}
	}
	if dr.Values != nil {
		t.Errorf("Values = %v, want nil for boundaries", dr.Values)
	}
}

func TestFindDynamicRangeErrors(t *testing.T) {
	baseline := testPulse(200, 0.05, 4, 0.2)
	freq := []float64{0.5, 1, 1.5}

	tests := []struct {
		name  string
		freq  []float64
		index []float64
		snr   float64
		query Query
		opts  []RangeOption
		want  error
	}{
		{"nil query", freq, []float64{1}, 1, nil, nil, thz.ErrConfiguration},
		{"zero snr", freq, []float64{1}, 0, Amaxd{}, nil, thz.ErrConfiguration},
		{"negative snr", freq, []float64{1}, -1, Amaxd{}, nil, thz.ErrConfiguration},
		{"no frequencies", nil, []float64{1}, 1, Amaxd{}, nil, thz.ErrConfiguration},
		{"index length", freq, []float64{1, 2}, 1, Amaxd{}, nil, thz.ErrShapeMismatch},
		{"non-positive index", freq, []float64{0}, 1, Amaxd{}, nil, thz.ErrConfiguration},
		{"zero thickness", freq, []float64{1}, 1, Amax{}, nil, thz.ErrConfiguration},
		{"absorption length", freq, []float64{1}, 1, Boundaries{Thickness: 1, Absorption: []float64{1}}, nil, thz.ErrShapeMismatch},
		{"decreasing boundaries grid", []float64{1, 0.5}, []float64{1}, 1, Boundaries{Thickness: 1, Absorption: []float64{1, 1}}, nil, thz.ErrConfiguration},
		{"beyond Nyquist", []float64{0.5, 20}, []float64{1}, 1, Amaxd{}, nil, thz.ErrOutOfRange},
		{"bad upsampling", freq, []float64{1}, 1, Amaxd{}, []RangeOption{WithRangeUpsampling(0)}, thz.ErrConfiguration},
		{"zero noise", freq, []float64{1}, 1, Amaxd{}, []RangeOption{WithNoiseModel(ConstantNoise{})}, thz.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindDynamicRange(baseline, tt.freq, tt.index, tt.snr, tt.query, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("FindDynamicRange() error = %v, want %v", err, tt.want)
			}
		})
	}
}
