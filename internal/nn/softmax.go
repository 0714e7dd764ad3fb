package nn

import (
	"fmt"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// SoftmaxConfig fixes the input shape of a Softmax operator.
type SoftmaxConfig struct {
	InRows int // N
	InCols int // C
}

// Softmax computes a numerically stable row-wise softmax:
//
//	P[r,c] = exp(Z[r,c] - max_r) / sum_c exp(Z[r,c] - max_r)
//
// The row maxima, row sums and P are preallocated workspaces.
type Softmax struct {
	rowmax *tensor.Matrix // [N, 1]
	rowsum *tensor.Matrix // [N, 1]
	p      *tensor.Matrix // [N, C]
}

// NewSoftmax allocates the workspaces for cfg from a.
func NewSoftmax(a *arena.Arena, cfg SoftmaxConfig) (*Softmax, error) {
	const op = "nn.NewSoftmax"
	if a == nil {
		return nil, status.Invalid(op, "nil arena")
	}
	if cfg.InRows <= 0 || cfg.InCols <= 0 {
		return nil, status.Invalid(op, "dimensions %dx%d must be > 0", cfg.InRows, cfg.InCols)
	}

	rowmax, err := tensor.New(a, cfg.InRows, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rowsum, err := tensor.New(a, cfg.InRows, 1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := tensor.New(a, cfg.InRows, cfg.InCols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Softmax{rowmax: rowmax, rowsum: rowsum, p: p}, nil
}

// Forward computes P = softmax(z) row by row.
//
// A row whose shifted exponentials sum to exactly zero is rejected with
// ErrInvalidArgument instead of producing NaN.
func (s *Softmax) Forward(z *tensor.Matrix) error {
	const op = "nn.Softmax.Forward"
	if err := tensor.CopyInto(s.p, z); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.RowMaxInto(s.rowmax, s.p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.SubColVecInPlace(s.p, s.rowmax); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.p.Exp(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.RowSumInto(s.rowsum, s.p); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.DivColVecInPlace(s.p, s.rowsum); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Output returns P [N, C] of the last Forward.
func (s *Softmax) Output() *tensor.Matrix { return s.p }
