// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/arenaml/internal/nn"
	"github.com/born-ml/arenaml/internal/rng"
	"github.com/born-ml/arenaml/tensor"
)

// FillStrategy selects how a parameter matrix is initialized.
type FillStrategy = nn.FillStrategy

// Initialization strategies.
const (
	FillOnes          = nn.FillOnes
	FillZeros         = nn.FillZeros
	FillXavierUniform = nn.FillXavierUniform
)

// Source produces uniform float32 values in [0, 1).
type Source = rng.Source

// SourceFunc adapts a function to Source.
type SourceFunc = rng.SourceFunc

// LinearConfig fixes the shapes and initialization of a Linear layer.
type LinearConfig = nn.LinearConfig

// Linear is a fully connected layer over fixed-size batches.
type Linear = nn.Linear

// SoftmaxConfig fixes the shape of a Softmax operator.
type SoftmaxConfig = nn.SoftmaxConfig

// Softmax is a row-wise softmax operator.
type Softmax = nn.Softmax

// CrossEntropyConfig fixes the shape of a CrossEntropy operator.
type CrossEntropyConfig = nn.CrossEntropyConfig

// CrossEntropy computes mean cross-entropy loss and its gradient.
type CrossEntropy = nn.CrossEntropy

// ParseFillStrategy maps "ones", "zeros" or "xavier_uniform" to a strategy.
func ParseFillStrategy(name string) (FillStrategy, error) { return nn.ParseFillStrategy(name) }

// Fill initializes m according to s. src is only used by FillXavierUniform.
func Fill(m *tensor.Matrix, s FillStrategy, src Source) error { return nn.Fill(m, s, src) }

// NewLinear allocates a Linear layer from a.
func NewLinear(a *tensor.Arena, cfg LinearConfig) (*Linear, error) { return nn.NewLinear(a, cfg) }

// NewSoftmax allocates a Softmax operator from a.
func NewSoftmax(a *tensor.Arena, cfg SoftmaxConfig) (*Softmax, error) { return nn.NewSoftmax(a, cfg) }

// NewCrossEntropy allocates a CrossEntropy operator from a.
func NewCrossEntropy(a *tensor.Arena, cfg CrossEntropyConfig) (*CrossEntropy, error) {
	return nn.NewCrossEntropy(a, cfg)
}

// NewMathRand returns a deterministic Source seeded with seed.
func NewMathRand(seed int64) Source { return rng.NewMathRand(seed) }

// CryptoSource returns a Source backed by crypto/rand.
func CryptoSource() Source { return rng.Crypto() }

// XavierUniform fills w from U(-a, a) with a = sqrt(6/(fanIn+fanOut)).
func XavierUniform(w *tensor.Matrix, src Source, fanIn, fanOut int) error {
	return rng.XavierUniform(w, src, fanIn, fanOut)
}
