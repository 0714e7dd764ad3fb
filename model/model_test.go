// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/arenaml/dataset"
	"github.com/born-ml/arenaml/model"
	"github.com/born-ml/arenaml/nn"
	"github.com/born-ml/arenaml/tensor"
)

func TestPublicAPI_Train(t *testing.T) {
	a, err := tensor.NewArena(make([]byte, tensor.KiB(16)))
	require.NoError(t, err)

	p, err := dataset.NewSliceProvider(
		[][]float32{{0, 0}, {0, 1}, {5, 5}, {5, 6}},
		[]int{0, 0, 1, 1}, 2)
	require.NoError(t, err)

	cfg, err := model.NewConfig(4, 2, 2, nil, nn.FillZeros, nn.FillZeros)
	require.NoError(t, err)
	m, err := model.New(a, cfg)
	require.NoError(t, err)

	x, err := tensor.New(a, 4, 2)
	require.NoError(t, err)
	y, err := tensor.New(a, 4, 2)
	require.NoError(t, err)

	var seen []model.Progress
	res, err := m.Train(p, model.TrainConfig{
		Epochs:     200,
		LR:         0.1,
		LogEvery:   100,
		OnProgress: func(pr model.Progress) { seen = append(seen, pr) },
	}, x, y)
	require.NoError(t, err)
	assert.Equal(t, model.TrainResult{LastLoss: res.LastLoss, Steps: 200, Epochs: 200}, res)
	assert.Less(t, res.LastLoss, float32(0.1))
	require.Len(t, seen, 2)
	assert.Equal(t, 200, seen[1].Step)

	probs, err := tensor.New(a, 4, 2)
	require.NoError(t, err)
	require.NoError(t, m.Infer(x, probs))
	for r, want := range []int{0, 0, 1, 1} {
		got, err := probs.ArgMaxRow(r)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %d", r)
	}
}

func TestPublicAPI_ZeroEpochs(t *testing.T) {
	a, err := tensor.NewArena(make([]byte, tensor.KiB(4)))
	require.NoError(t, err)
	cfg, err := model.NewConfig(1, 1, 2, nil, nn.FillZeros, nn.FillZeros)
	require.NoError(t, err)
	m, err := model.New(a, cfg)
	require.NoError(t, err)
	x, err := tensor.New(a, 1, 1)
	require.NoError(t, err)
	y, err := tensor.New(a, 1, 2)
	require.NoError(t, err)

	pulled := 0
	p := model.BatchProviderFunc(func(_, _ *tensor.Matrix) error {
		pulled++
		return tensor.ErrDone
	})
	res, err := m.Train(p, model.TrainConfig{Epochs: 0, LR: 0.1}, x, y)
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	assert.Zero(t, res.Steps)
	assert.Zero(t, pulled)
}
