package tensor

import (
	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/status"
)

// ColSumInto writes out[0,c] = sum_r src[r,c] into a 1×cols row vector.
func ColSumInto(out, src *Matrix) error {
	const op = "tensor.ColSumInto"
	if err := checkReduce(op, out, src); err != nil {
		return err
	}
	if err := expectShape(op, "out", out, 1, src.cols); err != nil {
		return err
	}
	for c := 0; c < src.cols; c++ {
		var sum float32
		for r := 0; r < src.rows; r++ {
			sum += src.data[r*src.cols+c]
		}
		out.data[c] = sum
	}
	return nil
}

// RowSum allocates a rows×1 vector with out[r,0] = sum_c src[r,c].
func RowSum(a *arena.Arena, src *Matrix) (*Matrix, error) {
	if err := checkMatrix("tensor.RowSum", "src", src); err != nil {
		return nil, err
	}
	out, err := New(a, src.rows, 1)
	if err != nil {
		return nil, err
	}
	rowSum(out.data, src)
	return out, nil
}

// RowSumInto writes the row sums of src into a preallocated rows×1 vector.
func RowSumInto(out, src *Matrix) error {
	const op = "tensor.RowSumInto"
	if err := checkReduce(op, out, src); err != nil {
		return err
	}
	if err := expectShape(op, "out", out, src.rows, 1); err != nil {
		return err
	}
	rowSum(out.data, src)
	return nil
}

func rowSum(dst []float32, src *Matrix) {
	for r := 0; r < src.rows; r++ {
		var sum float32
		for _, v := range src.data[r*src.cols : (r+1)*src.cols] {
			sum += v
		}
		dst[r] = sum
	}
}

// RowMax allocates a rows×1 vector with out[r,0] = max_c src[r,c].
func RowMax(a *arena.Arena, src *Matrix) (*Matrix, error) {
	if err := checkMatrix("tensor.RowMax", "src", src); err != nil {
		return nil, err
	}
	out, err := New(a, src.rows, 1)
	if err != nil {
		return nil, err
	}
	rowMax(out.data, src)
	return out, nil
}

// RowMaxInto writes the row maxima of src into a preallocated rows×1 vector.
func RowMaxInto(out, src *Matrix) error {
	const op = "tensor.RowMaxInto"
	if err := checkReduce(op, out, src); err != nil {
		return err
	}
	if err := expectShape(op, "out", out, src.rows, 1); err != nil {
		return err
	}
	rowMax(out.data, src)
	return nil
}

// RowMax returns the largest element of row r. The scan starts from
// column 0, not from -Inf.
func (m *Matrix) RowMax(r int) (float32, error) {
	row, err := m.Row(r)
	if err != nil {
		return 0, err
	}
	return maxOf(row), nil
}

func rowMax(dst []float32, src *Matrix) {
	for r := 0; r < src.rows; r++ {
		dst[r] = maxOf(src.data[r*src.cols : (r+1)*src.cols])
	}
}

func maxOf(row []float32) float32 {
	m := row[0]
	for _, v := range row[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// checkReduce validates a reduction whose output must not overlap its input.
func checkReduce(op string, out, src *Matrix) error {
	if err := checkMatrix(op, "out", out); err != nil {
		return err
	}
	if err := checkMatrix(op, "src", src); err != nil {
		return err
	}
	if overlaps(out.data, src.data) {
		return status.Invalid(op, "out aliases input")
	}
	return nil
}
