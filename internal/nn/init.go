package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/arenaml/internal/rng"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// FillStrategy selects how a parameter matrix is initialized.
type FillStrategy int

const (
	// FillOnes sets every element to 1.
	FillOnes FillStrategy = iota

	// FillZeros sets every element to 0.
	FillZeros

	// FillXavierUniform draws from U(-a, a) with a = sqrt(6/(cols+rows)).
	FillXavierUniform
)

// String returns the strategy name as used in configuration files.
func (s FillStrategy) String() string {
	switch s {
	case FillOnes:
		return "ones"
	case FillZeros:
		return "zeros"
	case FillXavierUniform:
		return "xavier_uniform"
	default:
		return fmt.Sprintf("FillStrategy(%d)", int(s))
	}
}

// ParseFillStrategy maps a configuration name back to a FillStrategy.
// Unknown names return ErrUnimplemented.
func ParseFillStrategy(name string) (FillStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ones":
		return FillOnes, nil
	case "zeros":
		return FillZeros, nil
	case "xavier_uniform", "xavier":
		return FillXavierUniform, nil
	default:
		return 0, fmt.Errorf("nn: fill strategy %q: %w", name, status.ErrUnimplemented)
	}
}

// Fill initializes m according to s.
//
// Parameters:
//   - m: Matrix to overwrite
//   - s: Initialization policy
//   - src: Uniform source, required only for FillXavierUniform
//
// Returns ErrUnimplemented for a strategy outside the known set.
func Fill(m *tensor.Matrix, s FillStrategy, src rng.Source) error {
	switch s {
	case FillOnes:
		return m.FillScalar(1)
	case FillZeros:
		return m.FillScalar(0)
	case FillXavierUniform:
		return rng.XavierUniformDense(m, src)
	default:
		return fmt.Errorf("nn: fill %v: %w", s, status.ErrUnimplemented)
	}
}
