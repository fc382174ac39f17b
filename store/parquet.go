package store

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/RyanBlaney/thz-tds/thz"
)

// File names inside a parquet container directory.
const (
	WaveformsFile = "waveforms.parquet"
	MetadataFile  = "metadata.parquet"
)

const (
	kindNumber = "number"
	kindText   = "text"
)

type waveformRow struct {
	Measurement string  `parquet:"measurement"`
	Dataset     string  `parquet:"dataset"`
	Index       int64   `parquet:"index"`
	Time        float64 `parquet:"time"`
	Amplitude   float64 `parquet:"amplitude"`
}

type metadataRow struct {
	Measurement string  `parquet:"measurement"`
	Key         string  `parquet:"key"`
	Number      float64 `parquet:"number"`
	Text        string  `parquet:"text"`
	Kind        string  `parquet:"kind"`
}

// ParquetOption configures WriteParquet.
type ParquetOption func(*parquetSettings)

type parquetSettings struct {
	compression string
}

// WithCompression selects the page codec: "zstd" (default), "snappy" or
// "gzip".
func WithCompression(name string) ParquetOption {
	return func(s *parquetSettings) {
		s.compression = name
	}
}

func compressionOption(name string) (parquet.WriterOption, error) {
	switch strings.ToLower(name) {
	case "", "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip), nil
	default:
		return nil, thz.Configurationf("unsupported parquet compression %q", name)
	}
}

// ValidCompression reports a configuration error unless name selects a codec
// WriteParquet supports.
func ValidCompression(name string) error {
	_, err := compressionOption(name)
	return err
}

// WriteParquet writes measurements into dir as a waveform table and a
// metadata table, creating dir if needed.
func WriteParquet(dir string, measurements []Measurement, opts ...ParquetOption) error {
	settings := parquetSettings{}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}
	compression, err := compressionOption(settings.compression)
	if err != nil {
		return err
	}

	var waves []waveformRow
	var meta []metadataRow
	for _, m := range measurements {
		if m.Name == "" {
			return thz.Configurationf("measurement name is required")
		}
		for _, ds := range sortedKeys(m.Datasets) {
			w := m.Datasets[ds]
			if len(w.Amplitude) != len(w.Time) {
				return thz.ShapeMismatchf("measurement %q dataset %q has %d times and %d amplitudes",
					m.Name, ds, len(w.Time), len(w.Amplitude))
			}
			for i := range w.Time {
				waves = append(waves, waveformRow{
					Measurement: m.Name,
					Dataset:     ds,
					Index:       int64(i),
					Time:        w.Time[i],
					Amplitude:   w.Amplitude[i],
				})
			}
		}
		for _, key := range sortedKeys(m.Metadata) {
			v := m.Metadata[key]
			row := metadataRow{Measurement: m.Name, Key: key, Number: v.Number, Kind: kindNumber}
			if v.IsText {
				row.Number, row.Text, row.Kind = 0, v.Text, kindText
			}
			meta = append(meta, row)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create container %s: %w", dir, err)
	}
	if err := writeRows(filepath.Join(dir, WaveformsFile), waves, compression); err != nil {
		return err
	}
	return writeRows(filepath.Join(dir, MetadataFile), meta, compression)
}

func writeRows[T any](path string, rows []T, compression parquet.WriterOption) error {
	var buf bytes.Buffer
	pw := parquet.NewGenericWriter[T](&buf, compression)
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readRows[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	gr := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer gr.Close()

	out := make([]T, 0, gr.NumRows())
	batch := make([]T, 1024)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}
	return out, nil
}

// Container is a Store loaded from a parquet container directory.
type Container struct {
	dir string
	mem *Memory
}

// OpenParquet loads the container written to dir by WriteParquet.
func OpenParquet(dir string) (*Container, error) {
	waves, err := readRows[waveformRow](filepath.Join(dir, WaveformsFile))
	if err != nil {
		return nil, err
	}
	meta, err := readRows[metadataRow](filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, err
	}

	measurements := make(map[string]Measurement)
	get := func(name string) Measurement {
		m, ok := measurements[name]
		if !ok {
			m = Measurement{
				Name:     name,
				Datasets: make(map[string]thz.Waveform),
				Metadata: make(map[string]Value),
			}
			measurements[name] = m
		}
		return m
	}

	slices.SortStableFunc(waves, func(a, b waveformRow) int {
		return cmp.Or(
			cmp.Compare(a.Measurement, b.Measurement),
			cmp.Compare(a.Dataset, b.Dataset),
			cmp.Compare(a.Index, b.Index),
		)
	})
	for _, r := range waves {
		m := get(r.Measurement)
		w := m.Datasets[r.Dataset]
		if r.Index != int64(len(w.Time)) {
			return nil, fmt.Errorf("container %s: measurement %q dataset %q is missing sample %d",
				dir, r.Measurement, r.Dataset, len(w.Time))
		}
		w.Time = append(w.Time, r.Time)
		w.Amplitude = append(w.Amplitude, r.Amplitude)
		m.Datasets[r.Dataset] = w
	}

	for _, r := range meta {
		m := get(r.Measurement)
		switch r.Kind {
		case kindText:
			m.Metadata[r.Key] = TextValue(r.Text)
		case kindNumber:
			m.Metadata[r.Key] = NumberValue(r.Number)
		default:
			return nil, fmt.Errorf("container %s: metadata %q has unknown kind %q", dir, r.Key, r.Kind)
		}
	}

	mem := &Memory{measurements: measurements}
	return &Container{dir: dir, mem: mem}, nil
}

// Dir returns the container directory.
func (c *Container) Dir() string {
	return c.dir
}

func (c *Container) MeasurementNames() ([]string, error) {
	return c.mem.MeasurementNames()
}

func (c *Container) Measurement(name string) (Measurement, error) {
	return c.mem.Measurement(name)
}

func (c *Container) Close() error {
	return c.mem.Close()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
