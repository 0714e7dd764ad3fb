// Package model composes the nn operators into a trainable softmax
// regression classifier.
package model

import (
	"fmt"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/nn"
	"github.com/born-ml/arenaml/internal/rng"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// Config fixes the shape and initialization of a SoftmaxRegression.
//
// N is the batch size and is not dynamic: every batch passed to Infer,
// TrainStep or Train must have exactly N rows.
type Config struct {
	N          int // Batch size
	D          int // Input features
	C          int // Classes
	WeightInit nn.FillStrategy
	BiasInit   nn.FillStrategy
	RNG        rng.Source
}

// NewConfig validates the dimensions and returns a Config.
func NewConfig(n, d, c int, src rng.Source, wInit, bInit nn.FillStrategy) (Config, error) {
	if n <= 0 || d <= 0 || c <= 0 {
		return Config{}, status.Invalid("model.NewConfig", "dimensions N=%d D=%d C=%d must be > 0", n, d, c)
	}
	return Config{N: n, D: d, C: c, WeightInit: wInit, BiasInit: bInit, RNG: src}, nil
}

// SoftmaxRegression is a single-layer classifier:
//
//	P = softmax(X @ W + b)
//
// trained with cross-entropy loss and plain SGD.
type SoftmaxRegression struct {
	cfg Config
	lin *nn.Linear
	sm  *nn.Softmax
	ce  *nn.CrossEntropy
}

// New allocates a model and all its workspaces from a.
func New(a *arena.Arena, cfg Config) (*SoftmaxRegression, error) {
	lin, err := nn.NewLinear(a, nn.LinearConfig{
		InRows:     cfg.N,
		InCols:     cfg.D,
		OutCols:    cfg.C,
		WeightInit: cfg.WeightInit,
		BiasInit:   cfg.BiasInit,
		RNG:        cfg.RNG,
	})
	if err != nil {
		return nil, fmt.Errorf("model.New: %w", err)
	}
	sm, err := nn.NewSoftmax(a, nn.SoftmaxConfig{InRows: cfg.N, InCols: cfg.C})
	if err != nil {
		return nil, fmt.Errorf("model.New: %w", err)
	}
	ce, err := nn.NewCrossEntropy(a, nn.CrossEntropyConfig{InRows: cfg.N, InCols: cfg.C})
	if err != nil {
		return nil, fmt.Errorf("model.New: %w", err)
	}
	return &SoftmaxRegression{cfg: cfg, lin: lin, sm: sm, ce: ce}, nil
}

// Config returns the configuration the model was built with.
func (m *SoftmaxRegression) Config() Config { return m.cfg }

// Linear returns the model's linear layer.
func (m *SoftmaxRegression) Linear() *nn.Linear { return m.lin }

// Infer writes class probabilities for x [N, D] into outP [N, C].
//
// The parameters are not modified; the forward workspaces are.
func (m *SoftmaxRegression) Infer(x, outP *tensor.Matrix) error {
	const op = "model.Infer"
	if err := m.checkBatch(op, "X", x, m.cfg.D); err != nil {
		return err
	}
	if err := m.checkBatch(op, "P", outP, m.cfg.C); err != nil {
		return err
	}
	if err := m.forward(x); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tensor.CopyInto(outP, m.sm.Output()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TrainStep runs one minibatch SGD step on (x [N, D], y [N, C]) and
// returns the mean cross-entropy loss of the batch before the update.
//
// The order is fixed: Linear.Forward, Softmax.Forward, CrossEntropy.Forward,
// CrossEntropy.Backward, Linear.Backward, Linear.SGDStep. A failure in any
// stage returns immediately; earlier stages are not rolled back.
func (m *SoftmaxRegression) TrainStep(x, y *tensor.Matrix, lr float32) (float32, error) {
	const op = "model.TrainStep"
	if err := m.checkBatch(op, "X", x, m.cfg.D); err != nil {
		return 0, err
	}
	if err := m.checkBatch(op, "Y", y, m.cfg.C); err != nil {
		return 0, err
	}
	if err := m.forward(x); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	p := m.sm.Output()
	if err := m.ce.Forward(p, y); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.ce.Backward(p, y); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.lin.Backward(m.ce.Grad()); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := m.lin.SGDStep(lr); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return m.ce.Loss(), nil
}

func (m *SoftmaxRegression) forward(x *tensor.Matrix) error {
	if err := m.lin.Forward(x); err != nil {
		return err
	}
	return m.sm.Forward(m.lin.Output())
}

// checkBatch requires mat to be [N, cols].
func (m *SoftmaxRegression) checkBatch(op, operand string, mat *tensor.Matrix, cols int) error {
	if mat == nil || len(mat.Data()) == 0 {
		return status.Invalid(op, "%s is nil", operand)
	}
	if mat.Rows() != m.cfg.N || mat.Cols() != cols {
		return &status.ShapeError{
			Op:      op,
			Operand: operand,
			Want:    status.Shape{m.cfg.N, cols},
			Got:     mat.Shape(),
		}
	}
	return nil
}
