// Package store provides access to recorded measurement sets: named groups
// of waveforms (sample, reference, baseline) with scalar metadata such as
// sample thickness.
//
// Memory keeps measurements in process; OpenParquet loads a directory
// written by WriteParquet. Waveforms returned by a store share its buffers
// and are only valid until Close; use Measurement.Clone to keep them longer.
package store

import (
	"errors"
	"fmt"
	"maps"

	"github.com/RyanBlaney/thz-tds/thz"
)

var (
	// ErrNotFound reports an unknown measurement, dataset or metadata key.
	ErrNotFound = errors.New("store: not found")
	// ErrClosed reports use of a store after Close.
	ErrClosed = errors.New("store: closed")
)

// Store is a read-only collection of measurements.
type Store interface {
	// MeasurementNames lists measurement names in ascending order.
	MeasurementNames() ([]string, error)
	Measurement(name string) (Measurement, error)
	Close() error
}

// Value is a metadata value: a number or a text.
type Value struct {
	Number float64 `json:"number,omitempty"`
	Text   string  `json:"text,omitempty"`
	IsText bool    `json:"is_text,omitempty"`
}

// NumberValue returns a numeric Value.
func NumberValue(v float64) Value {
	return Value{Number: v}
}

// TextValue returns a text Value.
func TextValue(s string) Value {
	return Value{Text: s, IsText: true}
}

func (v Value) String() string {
	if v.IsText {
		return v.Text
	}
	return fmt.Sprintf("%g", v.Number)
}

// Measurement is one measurement set.
type Measurement struct {
	Name     string
	Datasets map[string]thz.Waveform
	Metadata map[string]Value
}

// Dataset returns the named waveform.
func (m Measurement) Dataset(name string) (thz.Waveform, error) {
	w, ok := m.Datasets[name]
	if !ok {
		return thz.Waveform{}, fmt.Errorf("%w: dataset %q in measurement %q", ErrNotFound, name, m.Name)
	}
	return w, nil
}

// Number returns a numeric metadata value.
func (m Measurement) Number(key string) (float64, error) {
	v, ok := m.Metadata[key]
	if !ok {
		return 0, fmt.Errorf("%w: metadata %q in measurement %q", ErrNotFound, key, m.Name)
	}
	if v.IsText {
		return 0, thz.Configurationf("metadata %q in measurement %q is text %q, want a number", key, m.Name, v.Text)
	}
	return v.Number, nil
}

// Clone returns a deep copy that does not share buffers with the store.
func (m Measurement) Clone() Measurement {
	out := Measurement{
		Name:     m.Name,
		Datasets: make(map[string]thz.Waveform, len(m.Datasets)),
		Metadata: make(map[string]Value, len(m.Metadata)),
	}
	for k, w := range m.Datasets {
		out.Datasets[k] = w.Clone()
	}
	maps.Copy(out.Metadata, m.Metadata)
	return out
}

// With opens a store, passes it to fn and closes it afterwards, also when fn
// fails. Errors from fn and Close are joined.
func With(open func() (Store, error), fn func(Store) error) (err error) {
	s, err := open()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}
