package tensor

import (
	"github.com/chewxy/math32"

	"github.com/born-ml/arenaml/internal/status"
)

// SubScalar subtracts s from every element in place.
func (m *Matrix) SubScalar(s float32) error {
	if err := checkMatrix("tensor.SubScalar", "m", m); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] -= s
	}
	return nil
}

// Scale multiplies every element by s in place.
func (m *Matrix) Scale(s float32) error {
	if err := checkMatrix("tensor.Scale", "m", m); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] *= s
	}
	return nil
}

// Exp replaces every element with its natural exponential.
func (m *Matrix) Exp() error {
	if err := checkMatrix("tensor.Exp", "m", m); err != nil {
		return err
	}
	for i, v := range m.data {
		m.data[i] = math32.Exp(v)
	}
	return nil
}

// SGDInPlace applies param -= lr * grad elementwise. Shapes must match.
func SGDInPlace(param, grad *Matrix, lr float32) error {
	const op = "tensor.SGDInPlace"
	if err := checkBinary(op, param, grad); err != nil {
		return err
	}
	if err := expectShape(op, "grad", grad, param.rows, param.cols); err != nil {
		return err
	}
	for i, g := range grad.data {
		param.data[i] -= lr * g
	}
	return nil
}

// AddRowVecInPlace adds the 1×cols row vector rhs to every row of lhs.
func AddRowVecInPlace(lhs, rhs *Matrix) error {
	const op = "tensor.AddRowVecInPlace"
	if err := checkBinary(op, lhs, rhs); err != nil {
		return err
	}
	if err := expectShape(op, "rhs", rhs, 1, lhs.cols); err != nil {
		return err
	}
	n := lhs.cols
	for r := 0; r < lhs.rows; r++ {
		row := lhs.data[r*n : (r+1)*n]
		for c, v := range rhs.data {
			row[c] += v
		}
	}
	return nil
}

// SubColVecInPlace subtracts rhs[r,0] from every element of row r of lhs.
func SubColVecInPlace(lhs, rhs *Matrix) error {
	const op = "tensor.SubColVecInPlace"
	if err := checkBinary(op, lhs, rhs); err != nil {
		return err
	}
	if err := expectShape(op, "rhs", rhs, lhs.rows, 1); err != nil {
		return err
	}
	n := lhs.cols
	for r := 0; r < lhs.rows; r++ {
		sub := rhs.data[r]
		row := lhs.data[r*n : (r+1)*n]
		for c := range row {
			row[c] -= sub
		}
	}
	return nil
}

// DivColVecInPlace divides every element of row r of lhs by rhs[r,0].
//
// A divisor that is exactly zero is rejected with ErrInvalidArgument; no
// epsilon is added. Divisors are checked before anything is written.
func DivColVecInPlace(lhs, rhs *Matrix) error {
	const op = "tensor.DivColVecInPlace"
	if err := checkBinary(op, lhs, rhs); err != nil {
		return err
	}
	if err := expectShape(op, "rhs", rhs, lhs.rows, 1); err != nil {
		return err
	}
	for r, d := range rhs.data {
		if d == 0 {
			return status.Invalid(op, "zero divisor in row %d", r)
		}
	}
	n := lhs.cols
	for r := 0; r < lhs.rows; r++ {
		d := rhs.data[r]
		row := lhs.data[r*n : (r+1)*n]
		for c := range row {
			row[c] /= d
		}
	}
	return nil
}

// checkBinary validates both operands of an in-place kernel and rejects
// operands that partially overlap the destination.
func checkBinary(op string, lhs, rhs *Matrix) error {
	if err := checkMatrix(op, "lhs", lhs); err != nil {
		return err
	}
	if err := checkMatrix(op, "rhs", rhs); err != nil {
		return err
	}
	if partialOverlap(lhs.data, rhs.data) {
		return status.Invalid(op, "rhs partially overlaps lhs")
	}
	return nil
}
