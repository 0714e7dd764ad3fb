// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the operators of a softmax-regression classifier
// with hand-derived gradients.
//
// # Overview
//
// This package contains:
//   - Linear: Z = X @ W + b with forward, backward and SGD step
//   - Softmax: numerically stable row-wise softmax
//   - CrossEntropy: mean cross-entropy loss and its gradient w.r.t. logits
//   - Initialization: Ones, Zeros, XavierUniform
//
// Every operator allocates its workspaces once, from an arena, for a fixed
// batch shape. Forward and Backward never allocate, and inputs must match
// the construction shape exactly.
//
// # Basic Usage
//
//	a, _ := tensor.NewArena(make([]byte, tensor.KiB(64)))
//
//	lin, _ := nn.NewLinear(a, nn.LinearConfig{
//	    InRows: 8, InCols: 4, OutCols: 3,
//	    WeightInit: nn.FillXavierUniform,
//	    BiasInit:   nn.FillZeros,
//	    RNG:        nn.NewMathRand(42),
//	})
//	sm, _ := nn.NewSoftmax(a, nn.SoftmaxConfig{InRows: 8, InCols: 3})
//	ce, _ := nn.NewCrossEntropy(a, nn.CrossEntropyConfig{InRows: 8, InCols: 3})
//
//	_ = lin.Forward(x)
//	_ = sm.Forward(lin.Output())
//	_ = ce.Forward(sm.Output(), y)
//	_ = ce.Backward(sm.Output(), y)
//	_ = lin.Backward(ce.Grad())
//	_ = lin.SGDStep(0.1)
//
// # Labels
//
// CrossEntropy skips zero label entries. That is exact for one-hot labels;
// soft labels are not supported.
package nn
