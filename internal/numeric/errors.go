package numeric

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when matrix rows have inconsistent lengths,
	// when two operands must share a shape and do not, or when a signal has
	// a length the operation cannot split.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrInvalidInput is returned when an operation needs non-empty or
	// otherwise constrained input and did not get it.
	ErrInvalidInput = errors.New("invalid input")
)

// ShapeError describes a ragged row in a grid.
type ShapeError struct {
	Row  int
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: row %d has %d columns, want %d", e.Row, e.Got, e.Want)
}

// Unwrap lets errors.Is(err, ErrShapeMismatch) match.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// InvalidInputf formats an error wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ShapeMismatchf formats an error wrapping ErrShapeMismatch.
func ShapeMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
