package thz

import (
	"errors"
	"fmt"
)

// Error kinds shared by every package of the module. All returned errors wrap
// exactly one of these so callers can branch with errors.Is.
var (
	// ErrConfiguration reports an invalid or incomplete parameter combination.
	ErrConfiguration = errors.New("configuration error")
	// ErrOutOfRange reports a time window, half-width or frequency band that
	// exceeds the available data.
	ErrOutOfRange = errors.New("out of range")
	// ErrConvergence reports a per-frequency root-find that did not converge.
	ErrConvergence = errors.New("convergence failure")
	// ErrShapeMismatch reports spectra or sequences that do not share a grid.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Configurationf wraps ErrConfiguration with a formatted message.
func Configurationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// OutOfRangef wraps ErrOutOfRange with a formatted message.
func OutOfRangef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, fmt.Sprintf(format, args...))
}

// ShapeMismatchf wraps ErrShapeMismatch with a formatted message.
func ShapeMismatchf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}

// Convergencef wraps ErrConvergence with a formatted message. Unlike the
// other helpers the format may use %w to keep the solver's own error.
func Convergencef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConvergence}, args...)...)
}
