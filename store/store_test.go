package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/thz-tds/thz"
)

func testMeasurement(name string, thickness float64) Measurement {
	return Measurement{
		Name: name,
		Datasets: map[string]thz.Waveform{
			"Sample":    thz.NewWaveform(1, 0.05, []float64{0, 0.1, 0.7, -0.4, 0.05}),
			"Reference": thz.NewWaveform(0.5, 0.05, []float64{0, 0.2, 1, -0.6, 0.1}),
		},
		Metadata: map[string]Value{
			"Sample Thickness (mm)": NumberValue(thickness),
			"Operator":              TextValue("lab 2"),
		},
	}
}

func equalWaveforms(a, b thz.Waveform) bool {
	if len(a.Time) != len(b.Time) || len(a.Amplitude) != len(b.Amplitude) {
		return false
	}
	for i := range a.Time {
		if a.Time[i] != b.Time[i] || a.Amplitude[i] != b.Amplitude[i] {
			return false
		}
	}
	return true
}

func TestMemoryStore(t *testing.T) {
	m := testMeasurement("pellet-b", 1.2)
	s := NewMemory().Put(m).Put(testMeasurement("pellet-a", 0.8))

	// Put copies, so later edits to the caller's measurement are invisible.
	m.Datasets["Sample"].Amplitude[2] = 99

	names, err := s.MeasurementNames()
	if err != nil {
		t.Fatalf("MeasurementNames() error = %v", err)
	}
	if len(names) != 2 || names[0] != "pellet-a" || names[1] != "pellet-b" {
		t.Fatalf("MeasurementNames() = %v, want [pellet-a pellet-b]", names)
	}

	got, err := s.Measurement("pellet-b")
	if err != nil {
		t.Fatalf("Measurement() error = %v", err)
	}
	sample, err := got.Dataset("Sample")
	if err != nil {
		t.Fatalf("Dataset() error = %v", err)
	}
	if sample.Amplitude[2] != 0.7 {
		t.Errorf("stored amplitude = %g, want 0.7", sample.Amplitude[2])
	}
	if d, err := got.Number("Sample Thickness (mm)"); err != nil || d != 1.2 {
		t.Errorf("Number() = %g, %v; want 1.2", d, err)
	}

	if _, err := s.Measurement("pellet-c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Measurement(unknown) error = %v, want %v", err, ErrNotFound)
	}
	if _, err := got.Dataset("Baseline"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Dataset(unknown) error = %v, want %v", err, ErrNotFound)
	}
	if _, err := got.Number("Reference Thickness (mm)"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Number(unknown) error = %v, want %v", err, ErrNotFound)
	}
	if _, err := got.Number("Operator"); !errors.Is(err, thz.ErrConfiguration) {
		t.Errorf("Number(text) error = %v, want %v", err, thz.ErrConfiguration)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := s.MeasurementNames(); !errors.Is(err, ErrClosed) {
		t.Errorf("MeasurementNames() after Close error = %v, want %v", err, ErrClosed)
	}
	if _, err := s.Measurement("pellet-a"); !errors.Is(err, ErrClosed) {
		t.Errorf("Measurement() after Close error = %v, want %v", err, ErrClosed)
	}
}

func TestMeasurementClone(t *testing.T) {
	m := testMeasurement("pellet", 1)
	c := m.Clone()

	c.Datasets["Sample"].Amplitude[0] = 5
	c.Metadata["Operator"] = TextValue("lab 3")
	delete(c.Datasets, "Reference")

	if m.Datasets["Sample"].Amplitude[0] != 0 {
		t.Error("clone shares waveform buffers")
	}
	if m.Metadata["Operator"].Text != "lab 2" {
		t.Error("clone shares metadata")
	}
	if _, ok := m.Datasets["Reference"]; !ok {
		t.Error("clone shares dataset map")
	}
}

func TestWithClosesStore(t *testing.T) {
	s := NewMemory().Put(testMeasurement("pellet", 1))
	var seen []string

	err := With(func() (Store, error) { return s, nil }, func(st Store) error {
		var err error
		seen, err = st.MeasurementNames()
		return err
	})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("names inside With = %v, want one", seen)
	}
	if _, err := s.MeasurementNames(); !errors.Is(err, ErrClosed) {
		t.Fatalf("store usable after With: %v", err)
	}

	boom := errors.New("boom")
	s = NewMemory()
	err = With(func() (Store, error) { return s, nil }, func(Store) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("With() error = %v, want %v", err, boom)
	}
	if _, err := s.MeasurementNames(); !errors.Is(err, ErrClosed) {
		t.Fatalf("store not closed after failing fn: %v", err)
	}

	err = With(func() (Store, error) { return nil, boom }, func(Store) error {
		t.Fatal("fn called after failed open")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("With(failed open) error = %v, want %v", err, boom)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	measurements := []Measurement{testMeasurement("pellet-b", 1.2), testMeasurement("pellet-a", 0.8)}
	measurements[1].Datasets["Baseline"] = thz.NewWaveform(0, 0.05, []float64{0.01, -0.02, 0.5, -0.3, 0})

	for _, compression := range []string{"", "zstd", "snappy", "gzip"} {
		t.Run("compression="+compression, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "container")
			if err := WriteParquet(dir, measurements, WithCompression(compression)); err != nil {
				t.Fatalf("WriteParquet() error = %v", err)
			}

			c, err := OpenParquet(dir)
			if err != nil {
				t.Fatalf("OpenParquet() error = %v", err)
			}
			defer c.Close()

			if c.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", c.Dir(), dir)
			}
			names, err := c.MeasurementNames()
			if err != nil {
				t.Fatalf("MeasurementNames() error = %v", err)
			}
			if len(names) != 2 || names[0] != "pellet-a" || names[1] != "pellet-b" {
				t.Fatalf("MeasurementNames() = %v", names)
			}

			for _, want := range measurements {
				got, err := c.Measurement(want.Name)
				if err != nil {
					t.Fatalf("Measurement(%q) error = %v", want.Name, err)
				}
				if len(got.Datasets) != len(want.Datasets) {
					t.Fatalf("%s: %d datasets, want %d", want.Name, len(got.Datasets), len(want.Datasets))
				}
				for name, w := range want.Datasets {
					if !equalWaveforms(got.Datasets[name], w) {
						t.Errorf("%s/%s = %+v, want %+v", want.Name, name, got.Datasets[name], w)
					}
				}
				for key, v := range want.Metadata {
					if got.Metadata[key] != v {
						t.Errorf("%s metadata %q = %+v, want %+v", want.Name, key, got.Metadata[key], v)
					}
				}
			}
		})
	}
}

func TestParquetErrors(t *testing.T) {
	dir := t.TempDir()

	if err := WriteParquet(dir, []Measurement{testMeasurement("p", 1)}, WithCompression("lz77")); !errors.Is(err, thz.ErrConfiguration) {
		t.Errorf("WriteParquet(bad codec) error = %v, want %v", err, thz.ErrConfiguration)
	}
	if err := WriteParquet(dir, []Measurement{testMeasurement("", 1)}); !errors.Is(err, thz.ErrConfiguration) {
		t.Errorf("WriteParquet(no name) error = %v, want %v", err, thz.ErrConfiguration)
	}

	bad := testMeasurement("p", 1)
	bad.Datasets["Sample"] = thz.Waveform{Time: []float64{0, 1}, Amplitude: []float64{1}}
	if err := WriteParquet(dir, []Measurement{bad}); !errors.Is(err, thz.ErrShapeMismatch) {
		t.Errorf("WriteParquet(ragged) error = %v, want %v", err, thz.ErrShapeMismatch)
	}

	if _, err := OpenParquet(filepath.Join(dir, "missing")); err == nil {
		t.Error("OpenParquet(missing dir) succeeded")
	}
}
