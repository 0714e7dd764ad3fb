package nn

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// probFloor keeps ln(p) finite.
const probFloor = 1e-12

// CrossEntropyConfig fixes the shape of the probability and label matrices.
type CrossEntropyConfig struct {
	InRows int // N
	InCols int // C
}

// CrossEntropy computes the mean negative log-likelihood of probabilities P
// against labels Y, and its gradient with respect to the softmax logits.
//
// Mathematical Formulation:
//
//	Loss = -(1/N) * sum_{r,c : Y[r,c] != 0} Y[r,c] * ln(max(P[r,c], 1e-12))
//
// Gradient (Backward):
//
//	dZ = (P - Y) / N
//
// Labels equal to zero are skipped in Forward. That is exact for one-hot
// labels but underestimates the loss for smoothed or soft labels, which are
// not supported.
type CrossEntropy struct {
	loss float32
	dz   *tensor.Matrix // [N, C]
}

// NewCrossEntropy allocates the gradient buffer for cfg from a.
func NewCrossEntropy(a *arena.Arena, cfg CrossEntropyConfig) (*CrossEntropy, error) {
	const op = "nn.NewCrossEntropy"
	if a == nil {
		return nil, status.Invalid(op, "nil arena")
	}
	if cfg.InRows <= 0 || cfg.InCols <= 0 {
		return nil, status.Invalid(op, "dimensions %dx%d must be > 0", cfg.InRows, cfg.InCols)
	}
	dz, err := tensor.New(a, cfg.InRows, cfg.InCols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &CrossEntropy{dz: dz}, nil
}

// Forward computes the mean loss of p against y. Both must be [N, C].
func (ce *CrossEntropy) Forward(p, y *tensor.Matrix) error {
	if err := ce.checkInputs("nn.CrossEntropy.Forward", p, y); err != nil {
		return err
	}

	var acc float32
	pd, yd := p.Data(), y.Data()
	for i, label := range yd {
		if label == 0 {
			continue
		}
		prob := pd[i]
		if prob < probFloor {
			prob = probFloor
		}
		acc += -label * math32.Log(prob)
	}
	ce.loss = acc / float32(p.Rows())
	return nil
}

// Backward writes dZ = (p - y) / N. It does not depend on Forward.
func (ce *CrossEntropy) Backward(p, y *tensor.Matrix) error {
	if err := ce.checkInputs("nn.CrossEntropy.Backward", p, y); err != nil {
		return err
	}

	inv := 1 / float32(p.Rows())
	pd, yd, dz := p.Data(), y.Data(), ce.dz.Data()
	for i := range dz {
		dz[i] = (pd[i] - yd[i]) * inv
	}
	return nil
}

// Loss returns the mean loss of the last Forward.
func (ce *CrossEntropy) Loss() float32 { return ce.loss }

// Grad returns dZ [N, C] of the last Backward.
func (ce *CrossEntropy) Grad() *tensor.Matrix { return ce.dz }

func (ce *CrossEntropy) checkInputs(op string, p, y *tensor.Matrix) error {
	if p == nil || y == nil {
		return status.Invalid(op, "nil input")
	}
	want := ce.dz.Shape()
	if p.Shape() != want {
		return &status.ShapeError{Op: op, Operand: "P", Want: want, Got: p.Shape()}
	}
	if y.Shape() != want {
		return &status.ShapeError{Op: op, Operand: "Y", Want: want, Got: y.Shape()}
	}
	return nil
}
