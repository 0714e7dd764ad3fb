// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"io"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// Type aliases for public API

// Arena is a bump-pointer allocator over a caller-owned buffer.
type Arena = arena.Arena

// Matrix is a dense row-major float32 matrix.
type Matrix = tensor.Matrix

// Shape is a (rows, cols) pair.
type Shape = status.Shape

// ShapeError reports an operand with the wrong shape.
type ShapeError = status.ShapeError

// Sentinel errors shared by every arenaml package.
var (
	ErrDone            = status.ErrDone
	ErrInvalidArgument = status.ErrInvalidArgument
	ErrUnimplemented   = status.ErrUnimplemented
	ErrOutOfBounds     = status.ErrOutOfBounds
	ErrOutOfMemory     = status.ErrOutOfMemory
)

// KiB returns n kibibytes in bytes.
func KiB(n int) int { return arena.KiB(n) }

// MiB returns n mebibytes in bytes.
func MiB(n int) int { return arena.MiB(n) }

// NewArena creates an arena over buf.
func NewArena(buf []byte) (*Arena, error) { return arena.New(buf) }

// New allocates an uninitialized rows x cols matrix from a.
func New(a *Arena, rows, cols int) (*Matrix, error) { return tensor.New(a, rows, cols) }

// Wrap builds a rows x cols matrix over data without copying.
func Wrap(rows, cols int, data []float32) (*Matrix, error) { return tensor.Wrap(rows, cols, data) }

// Copy allocates a copy of src from a.
func Copy(a *Arena, src *Matrix) (*Matrix, error) { return tensor.Copy(a, src) }

// CopyInto copies src into dst. Shapes must match.
func CopyInto(dst, src *Matrix) error { return tensor.CopyInto(dst, src) }

// Equal reports whether a and b have the same shape and every element
// differs by at most tol.
func Equal(a, b *Matrix, tol float32) bool { return tensor.Equal(a, b, tol) }

// MatMul allocates lhs @ rhs from a.
func MatMul(a *Arena, lhs, rhs *Matrix) (*Matrix, error) { return tensor.MatMul(a, lhs, rhs) }

// MatMulInto writes lhs @ rhs into out.
func MatMulInto(out, lhs, rhs *Matrix) error { return tensor.MatMulInto(out, lhs, rhs) }

// Transpose allocates the transpose of m from a.
func Transpose(a *Arena, m *Matrix) (*Matrix, error) { return tensor.Transpose(a, m) }

// TransposeInto writes the transpose of m into out.
func TransposeInto(out, m *Matrix) error { return tensor.TransposeInto(out, m) }

// ColSumInto writes the column sums of src into out [1, cols].
func ColSumInto(out, src *Matrix) error { return tensor.ColSumInto(out, src) }

// RowSum allocates the row sums of src [rows, 1] from a.
func RowSum(a *Arena, src *Matrix) (*Matrix, error) { return tensor.RowSum(a, src) }

// RowSumInto writes the row sums of src into out [rows, 1].
func RowSumInto(out, src *Matrix) error { return tensor.RowSumInto(out, src) }

// RowMax allocates the row maxima of src [rows, 1] from a.
func RowMax(a *Arena, src *Matrix) (*Matrix, error) { return tensor.RowMax(a, src) }

// RowMaxInto writes the row maxima of src into out [rows, 1].
func RowMaxInto(out, src *Matrix) error { return tensor.RowMaxInto(out, src) }

// AddRowVecInPlace adds the row vector rhs [1, cols] to every row of lhs.
func AddRowVecInPlace(lhs, rhs *Matrix) error { return tensor.AddRowVecInPlace(lhs, rhs) }

// SubColVecInPlace subtracts rhs[r] [rows, 1] from every element of row r.
func SubColVecInPlace(lhs, rhs *Matrix) error { return tensor.SubColVecInPlace(lhs, rhs) }

// DivColVecInPlace divides every element of row r by rhs[r]. A zero
// divisor anywhere fails the call before lhs is written.
func DivColVecInPlace(lhs, rhs *Matrix) error { return tensor.DivColVecInPlace(lhs, rhs) }

// SGDInPlace applies param -= lr * grad.
func SGDInPlace(param, grad *Matrix, lr float32) error { return tensor.SGDInPlace(param, grad, lr) }

// Fprint writes m to w under the given name, one row per line.
func Fprint(w io.Writer, name string, m *Matrix) error { return tensor.Fprint(w, name, m) }
