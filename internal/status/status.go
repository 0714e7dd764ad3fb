// Package status defines the error taxonomy shared by every arenaml package.
//
// All operations report failures by returning one of the sentinels below,
// usually wrapped with the failing operation and the offending shapes.
// Callers compare with errors.Is.
package status

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrDone is a control-flow signal from a batch provider: the current
	// epoch has no more batches. It is not a failure.
	ErrDone = errors.New("epoch exhausted")

	// ErrInvalidArgument covers nil inputs, shape mismatches, zero-sized
	// dimensions, out-of-range indices and rejected divisions by zero.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnimplemented is returned for an unrecognized enumerated strategy.
	ErrUnimplemented = errors.New("unimplemented")

	// ErrOutOfBounds is reserved. Index checks currently report ErrInvalidArgument.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrOutOfMemory is returned when an arena cannot satisfy an allocation.
	ErrOutOfMemory = errors.New("out of memory")
)

// Shape is a (rows, cols) pair used in error reports.
type Shape [2]int

// String renders the shape as RxC.
func (s Shape) String() string {
	return fmt.Sprintf("%dx%d", s[0], s[1])
}

// ShapeError describes an operand whose shape does not match what an
// operation requires. It unwraps to ErrInvalidArgument.
type ShapeError struct {
	Op      string // Operation name, e.g. "tensor.MatMulInto"
	Operand string // Which argument was wrong, e.g. "out"
	Want    Shape
	Got     Shape
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s shape %v, want %v: %v", e.Op, e.Operand, e.Got, e.Want, ErrInvalidArgument)
}

// Unwrap returns ErrInvalidArgument.
func (e *ShapeError) Unwrap() error {
	return ErrInvalidArgument
}

// Invalid wraps ErrInvalidArgument with a formatted reason.
func Invalid(op, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), ErrInvalidArgument)
}
