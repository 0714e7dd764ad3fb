// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import (
	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/nn"
	"github.com/born-ml/arenaml/tensor"
)

// Config fixes the shape and initialization of a SoftmaxRegression.
type Config = model.Config

// SoftmaxRegression is a single-layer classifier.
type SoftmaxRegression = model.SoftmaxRegression

// BatchProvider fills caller-owned batch buffers.
type BatchProvider = model.BatchProvider

// BatchProviderFunc adapts a plain function to BatchProvider.
type BatchProviderFunc = model.BatchProviderFunc

// TrainConfig controls a Train run.
type TrainConfig = model.TrainConfig

// Progress is reported to TrainConfig.OnProgress.
type Progress = model.Progress

// TrainResult summarizes a Train run.
type TrainResult = model.TrainResult

// NewConfig validates the dimensions and returns a Config.
func NewConfig(n, d, c int, src nn.Source, wInit, bInit nn.FillStrategy) (Config, error) {
	return model.NewConfig(n, d, c, src, wInit, bInit)
}

// New allocates a model and all its workspaces from a.
func New(a *tensor.Arena, cfg Config) (*SoftmaxRegression, error) { return model.New(a, cfg) }
