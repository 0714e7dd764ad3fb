package tensor

import (
	"fmt"
	"unsafe"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/status"
)

// Matrix is a dense row-major float32 matrix.
//
// Element (r, c) lives at data[r*cols+c]. A Matrix does not own its memory:
// the backing slice belongs to the arena that allocated it (New) or to the
// caller (Wrap). The shape never changes after construction.
type Matrix struct {
	rows int
	cols int
	data []float32
}

// New allocates an uninitialized rows×cols matrix from a.
//
// Zero-sized dimensions are rejected with ErrInvalidArgument. When the arena
// is exhausted ErrOutOfMemory is returned.
func New(a *arena.Arena, rows, cols int) (*Matrix, error) {
	if a == nil {
		return nil, status.Invalid("tensor.New", "nil arena")
	}
	if rows <= 0 || cols <= 0 {
		return nil, status.Invalid("tensor.New", "dimensions %dx%d must be > 0", rows, cols)
	}
	data, err := a.AllocFloat32(rows * cols)
	if err != nil {
		return nil, fmt.Errorf("tensor.New %dx%d: %w", rows, cols, err)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Wrap builds a matrix over a caller-owned slice of exactly rows*cols values.
func Wrap(rows, cols int, data []float32) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, status.Invalid("tensor.Wrap", "dimensions %dx%d must be > 0", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, status.Invalid("tensor.Wrap", "got %d values for %dx%d", len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() status.Shape { return status.Shape{m.rows, m.cols} }

// Data returns the backing storage.
// WARNING: the slice aliases arena memory; writes are visible to the matrix.
func (m *Matrix) Data() []float32 { return m.data }

// Get returns element (r, c).
func (m *Matrix) Get(r, c int) (float32, error) {
	if err := checkMatrix("tensor.Get", "m", m); err != nil {
		return 0, err
	}
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		return 0, status.Invalid("tensor.Get", "index (%d,%d) outside %v", r, c, m.Shape())
	}
	return m.data[r*m.cols+c], nil
}

// Set stores v at (r, c).
func (m *Matrix) Set(r, c int, v float32) error {
	if err := checkMatrix("tensor.Set", "m", m); err != nil {
		return err
	}
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		return status.Invalid("tensor.Set", "index (%d,%d) outside %v", r, c, m.Shape())
	}
	m.data[r*m.cols+c] = v
	return nil
}

// FillScalar sets every element to v.
func (m *Matrix) FillScalar(v float32) error {
	if err := checkMatrix("tensor.FillScalar", "m", m); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] = v
	}
	return nil
}

// FillRow overwrites row r with values, which must hold exactly Cols() entries.
func (m *Matrix) FillRow(r int, values []float32) error {
	if err := checkMatrix("tensor.FillRow", "m", m); err != nil {
		return err
	}
	if r < 0 || r >= m.rows {
		return status.Invalid("tensor.FillRow", "row %d outside %v", r, m.Shape())
	}
	if len(values) != m.cols {
		return status.Invalid("tensor.FillRow", "got %d values for %d columns", len(values), m.cols)
	}
	copy(m.data[r*m.cols:(r+1)*m.cols], values)
	return nil
}

// Row returns a view of row r. Writes go through to the matrix.
func (m *Matrix) Row(r int) ([]float32, error) {
	if err := checkMatrix("tensor.Row", "m", m); err != nil {
		return nil, err
	}
	if r < 0 || r >= m.rows {
		return nil, status.Invalid("tensor.Row", "row %d outside %v", r, m.Shape())
	}
	return m.data[r*m.cols : (r+1)*m.cols : (r+1)*m.cols], nil
}

// ArgMaxRow returns the column index of the largest element in row r.
// Ties resolve to the lowest index.
func (m *Matrix) ArgMaxRow(r int) (int, error) {
	row, err := m.Row(r)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(row); c++ {
		if row[c] > row[best] {
			best = c
		}
	}
	return best, nil
}

// Copy allocates a new matrix from a holding the same values as src.
func Copy(a *arena.Arena, src *Matrix) (*Matrix, error) {
	if err := checkMatrix("tensor.Copy", "src", src); err != nil {
		return nil, err
	}
	dst, err := New(a, src.rows, src.cols)
	if err != nil {
		return nil, err
	}
	copy(dst.data, src.data)
	return dst, nil
}

// CopyInto copies src into the preallocated dst of identical shape.
func CopyInto(dst, src *Matrix) error {
	const op = "tensor.CopyInto"
	if err := checkMatrix(op, "dst", dst); err != nil {
		return err
	}
	if err := checkMatrix(op, "src", src); err != nil {
		return err
	}
	if err := expectShape(op, "dst", dst, src.rows, src.cols); err != nil {
		return err
	}
	copy(dst.data, src.data)
	return nil
}

// Equal reports whether a and b have the same shape and every element
// differs by at most tol.
func Equal(a, b *Matrix, tol float32) bool {
	if a == nil || b == nil || a.rows != b.rows || a.cols != b.cols {
		return false
	}
	for i := range a.data {
		d := a.data[i] - b.data[i]
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

// checkMatrix rejects nil matrices and matrices without storage.
func checkMatrix(op, operand string, m *Matrix) error {
	if m == nil {
		return status.Invalid(op, "%s is nil", operand)
	}
	if m.data == nil || len(m.data) != m.rows*m.cols || m.rows <= 0 || m.cols <= 0 {
		return status.Invalid(op, "%s has no storage", operand)
	}
	return nil
}

// expectShape returns a ShapeError unless m is rows×cols.
func expectShape(op, operand string, m *Matrix, rows, cols int) error {
	if m.rows != rows || m.cols != cols {
		return &status.ShapeError{
			Op:      op,
			Operand: operand,
			Want:    status.Shape{rows, cols},
			Got:     m.Shape(),
		}
	}
	return nil
}

// span returns the address range [lo, hi) covered by s.
func span(s []float32) (lo, hi uintptr) {
	lo = uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	return lo, lo + uintptr(len(s))*unsafe.Sizeof(float32(0))
}

// overlaps reports whether a and b share any element.
func overlaps(a, b []float32) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	alo, ahi := span(a)
	blo, bhi := span(b)
	return alo < bhi && blo < ahi
}

// partialOverlap reports whether a and b share memory without being the
// exact same region. Elementwise in-place kernels tolerate exact aliasing
// because every element is read before it is written.
func partialOverlap(a, b []float32) bool {
	if !overlaps(a, b) {
		return false
	}
	return unsafe.SliceData(a) != unsafe.SliceData(b) || len(a) != len(b)
}
