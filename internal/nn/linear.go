package nn

import (
	"fmt"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/rng"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// LinearConfig fixes the shapes and initialization of a Linear layer.
type LinearConfig struct {
	InRows     int // Batch size N
	InCols     int // Input features D
	OutCols    int // Output features C
	WeightInit FillStrategy
	BiasInit   FillStrategy
	RNG        rng.Source // Required when either init is FillXavierUniform
}

// Linear implements a fully connected layer over fixed-size batches.
//
// Performs the transformation: Z = X @ W + b
// where:
//   - X is the cached input with shape [N, D]
//   - W is the weight matrix with shape [D, C]
//   - b is the bias row vector with shape [1, C], added to every row
//   - Z is the logits matrix with shape [N, C]
//
// Every buffer, including the gradients dW [D, C], db [1, C] and the
// transposed input workspace [D, N], is allocated once by NewLinear.
// Forward and Backward never allocate.
type Linear struct {
	w  *tensor.Matrix
	b  *tensor.Matrix
	x  *tensor.Matrix
	z  *tensor.Matrix
	dw *tensor.Matrix
	db *tensor.Matrix
	xT *tensor.Matrix
}

// NewLinear allocates a Linear layer from a and initializes its parameters.
//
// Parameters:
//   - a: Arena that backs every buffer of the layer
//   - cfg: Shapes and fill strategies
//
// Returns ErrInvalidArgument for zero dimensions or a Xavier init without
// RNG, ErrUnimplemented for an unknown strategy and ErrOutOfMemory when a
// runs out.
func NewLinear(a *arena.Arena, cfg LinearConfig) (*Linear, error) {
	const op = "nn.NewLinear"
	if a == nil {
		return nil, status.Invalid(op, "nil arena")
	}
	if cfg.InRows <= 0 || cfg.InCols <= 0 || cfg.OutCols <= 0 {
		return nil, status.Invalid(op, "dimensions N=%d D=%d C=%d must be > 0",
			cfg.InRows, cfg.InCols, cfg.OutCols)
	}
	if (cfg.WeightInit == FillXavierUniform || cfg.BiasInit == FillXavierUniform) && cfg.RNG == nil {
		return nil, status.Invalid(op, "xavier initialization needs an RNG")
	}

	n, d, c := cfg.InRows, cfg.InCols, cfg.OutCols
	l := &Linear{}
	for _, s := range []struct {
		dst        **tensor.Matrix
		rows, cols int
	}{
		{&l.x, n, d},
		{&l.w, d, c},
		{&l.b, 1, c},
		{&l.z, n, c},
		{&l.dw, d, c},
		{&l.db, 1, c},
		{&l.xT, d, n},
	} {
		m, err := tensor.New(a, s.rows, s.cols)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		*s.dst = m
	}

	if err := Fill(l.w, cfg.WeightInit, cfg.RNG); err != nil {
		return nil, fmt.Errorf("%s: weight: %w", op, err)
	}
	if err := Fill(l.b, cfg.BiasInit, cfg.RNG); err != nil {
		return nil, fmt.Errorf("%s: bias: %w", op, err)
	}
	return l, nil
}

// Forward copies in into the layer's input cache, then computes
// Z = X @ W + b.
//
// in must be exactly [N, D]. The result is available through Output.
func (l *Linear) Forward(in *tensor.Matrix) error {
	if err := tensor.CopyInto(l.x, in); err != nil {
		return fmt.Errorf("nn.Linear.Forward: %w", err)
	}
	if err := tensor.MatMulInto(l.z, l.x, l.w); err != nil {
		return fmt.Errorf("nn.Linear.Forward: %w", err)
	}
	if err := tensor.AddRowVecInPlace(l.z, l.b); err != nil {
		return fmt.Errorf("nn.Linear.Forward: %w", err)
	}
	return nil
}

// Backward computes the parameter gradients for the upstream gradient dZ
// [N, C] against the input seen by the last Forward:
//
//	dW = X^T @ dZ
//	db = colsum(dZ)
//
// The gradient with respect to the input is not computed.
func (l *Linear) Backward(dZ *tensor.Matrix) error {
	const op = "nn.Linear.Backward"
	if dZ == nil {
		return status.Invalid(op, "nil dZ")
	}
	if dZ.Rows() != l.x.Rows() || dZ.Cols() != l.w.Cols() {
		return &status.ShapeError{
			Op:      op,
			Operand: "dZ",
			Want:    status.Shape{l.x.Rows(), l.w.Cols()},
			Got:     dZ.Shape(),
		}
	}
	if err := tensor.TransposeInto(l.xT, l.x); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.MatMulInto(l.dw, l.xT, dZ); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.ColSumInto(l.db, dZ); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SGDStep applies W -= lr*dW and b -= lr*db.
func (l *Linear) SGDStep(lr float32) error {
	if err := tensor.SGDInPlace(l.w, l.dw, lr); err != nil {
		return fmt.Errorf("nn.Linear.SGDStep: %w", err)
	}
	if err := tensor.SGDInPlace(l.b, l.db, lr); err != nil {
		return fmt.Errorf("nn.Linear.SGDStep: %w", err)
	}
	return nil
}

// Weight returns W [D, C].
func (l *Linear) Weight() *tensor.Matrix { return l.w }

// Bias returns b [1, C].
func (l *Linear) Bias() *tensor.Matrix { return l.b }

// Output returns the logits Z [N, C] of the last Forward.
func (l *Linear) Output() *tensor.Matrix { return l.z }

// WeightGrad returns dW [D, C] of the last Backward.
func (l *Linear) WeightGrad() *tensor.Matrix { return l.dw }

// BiasGrad returns db [1, C] of the last Backward.
func (l *Linear) BiasGrad() *tensor.Matrix { return l.db }
