// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides a softmax-regression classifier trained with
// minibatch SGD.
//
// # Overview
//
// SoftmaxRegression composes nn.Linear, nn.Softmax and nn.CrossEntropy:
//
//	P = softmax(X @ W + b)
//
// The batch size N is fixed at construction. Train pulls batches from a
// BatchProvider into caller-owned buffers and runs one TrainStep per
// batch:
//
//	a, _ := tensor.NewArena(make([]byte, tensor.KiB(64)))
//	cfg, _ := model.NewConfig(n, d, c, nn.NewMathRand(1), nn.FillXavierUniform, nn.FillZeros)
//	m, _ := model.New(a, cfg)
//
//	x, _ := tensor.New(a, n, d)
//	y, _ := tensor.New(a, n, c)
//	res, err := m.Train(provider, model.TrainConfig{Epochs: 50, LR: 0.05}, x, y)
//
// # Batch providers
//
// A provider returns nil after writing a batch and tensor.ErrDone when the
// epoch is exhausted, having already rewound itself. Any other error aborts
// Train, which returns it wrapped along with the partial TrainResult.
package model
