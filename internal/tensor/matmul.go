package tensor

import (
	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/status"
)

// MatMul allocates out = lhs @ rhs from a.
// Shapes: (M, K) @ (K, N) -> (M, N).
func MatMul(a *arena.Arena, lhs, rhs *Matrix) (*Matrix, error) {
	const op = "tensor.MatMul"
	if err := checkMatMul(op, lhs, rhs); err != nil {
		return nil, err
	}
	out, err := New(a, lhs.rows, rhs.cols)
	if err != nil {
		return nil, err
	}
	matmulFloat32(out.data, lhs.data, rhs.data, lhs.rows, lhs.cols, rhs.cols)
	return out, nil
}

// MatMulInto computes out = lhs @ rhs into a preallocated (M, N) matrix.
// out must not share memory with either operand.
func MatMulInto(out, lhs, rhs *Matrix) error {
	const op = "tensor.MatMulInto"
	if err := checkMatrix(op, "out", out); err != nil {
		return err
	}
	if err := checkMatMul(op, lhs, rhs); err != nil {
		return err
	}
	if err := expectShape(op, "out", out, lhs.rows, rhs.cols); err != nil {
		return err
	}
	if overlaps(out.data, lhs.data) || overlaps(out.data, rhs.data) {
		return status.Invalid(op, "out aliases an operand")
	}
	matmulFloat32(out.data, lhs.data, rhs.data, lhs.rows, lhs.cols, rhs.cols)
	return nil
}

func checkMatMul(op string, lhs, rhs *Matrix) error {
	if err := checkMatrix(op, "lhs", lhs); err != nil {
		return err
	}
	if err := checkMatrix(op, "rhs", rhs); err != nil {
		return err
	}
	if lhs.cols != rhs.rows {
		return status.Invalid(op, "shape mismatch %v @ %v", lhs.Shape(), rhs.Shape())
	}
	return nil
}

// matmulFloat32 performs naive matrix multiplication.
// C[i,j] = sum_t A[i,t] * B[t,j], accumulated in float32.
func matmulFloat32(c, a, b []float32, m, k, n int) {
	for i := 0; i < m; i++ {
		aRow := a[i*k : (i+1)*k]
		for j := 0; j < n; j++ {
			var sum float32
			for t, av := range aRow {
				sum += av * b[t*n+j]
			}
			c[i*n+j] = sum
		}
	}
}

// Transpose allocates the (cols, rows) transpose of m from a.
func Transpose(a *arena.Arena, m *Matrix) (*Matrix, error) {
	if err := checkMatrix("tensor.Transpose", "m", m); err != nil {
		return nil, err
	}
	out, err := New(a, m.cols, m.rows)
	if err != nil {
		return nil, err
	}
	transposeFloat32(out.data, m.data, m.rows, m.cols)
	return out, nil
}

// TransposeInto writes the transpose of m into a preallocated (cols, rows)
// matrix that does not share memory with m.
func TransposeInto(out, m *Matrix) error {
	const op = "tensor.TransposeInto"
	if err := checkMatrix(op, "out", out); err != nil {
		return err
	}
	if err := checkMatrix(op, "m", m); err != nil {
		return err
	}
	if err := expectShape(op, "out", out, m.cols, m.rows); err != nil {
		return err
	}
	if overlaps(out.data, m.data) {
		return status.Invalid(op, "out aliases input")
	}
	transposeFloat32(out.data, m.data, m.rows, m.cols)
	return nil
}

func transposeFloat32(dst, src []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dst[c*rows+r] = src[r*cols+c]
		}
	}
}
