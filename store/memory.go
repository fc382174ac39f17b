package store

import (
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	measurements map[string]Measurement
	closed       bool
}

func NewMemory() *Memory {
	return &Memory{measurements: make(map[string]Measurement)}
}

// Put stores a copy of m under m.Name, replacing any previous measurement
// of that name, and returns the store for chaining.
func (s *Memory) Put(m Measurement) *Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.measurements == nil {
		s.measurements = make(map[string]Measurement)
	}
	s.measurements[m.Name] = m.Clone()
	return s
}

func (s *Memory) MeasurementNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	names := make([]string, 0, len(s.measurements))
	for name := range s.measurements {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Measurement returns the stored measurement. Its waveforms alias the
// store's buffers.
func (s *Memory) Measurement(name string) (Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Measurement{}, ErrClosed
	}

	m, ok := s.measurements[name]
	if !ok {
		return Measurement{}, fmt.Errorf("%w: measurement %q", ErrNotFound, name)
	}
	return m, nil
}

// Close releases the stored measurements. Closing twice is a no-op.
func (s *Memory) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.measurements = nil
	return nil
}
