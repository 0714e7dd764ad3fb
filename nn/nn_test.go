// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/arenaml/nn"
	"github.com/born-ml/arenaml/tensor"
)

func TestPublicAPI_TrainingStep(t *testing.T) {
	a, err := tensor.NewArena(make([]byte, tensor.KiB(8)))
	require.NoError(t, err)

	lin, err := nn.NewLinear(a, nn.LinearConfig{
		InRows: 2, InCols: 2, OutCols: 2,
		WeightInit: nn.FillZeros, BiasInit: nn.FillZeros,
	})
	require.NoError(t, err)
	sm, err := nn.NewSoftmax(a, nn.SoftmaxConfig{InRows: 2, InCols: 2})
	require.NoError(t, err)
	ce, err := nn.NewCrossEntropy(a, nn.CrossEntropyConfig{InRows: 2, InCols: 2})
	require.NoError(t, err)

	x, err := tensor.Wrap(2, 2, []float32{1, 0, 0, 1})
	require.NoError(t, err)
	y, err := tensor.Wrap(2, 2, []float32{1, 0, 0, 1})
	require.NoError(t, err)

	step := func() float32 {
		require.NoError(t, lin.Forward(x))
		require.NoError(t, sm.Forward(lin.Output()))
		require.NoError(t, ce.Forward(sm.Output(), y))
		require.NoError(t, ce.Backward(sm.Output(), y))
		require.NoError(t, lin.Backward(ce.Grad()))
		require.NoError(t, lin.SGDStep(1))
		return ce.Loss()
	}

	first := step()
	assert.InDelta(t, 0.6931, first, 1e-4, "uniform prediction over two classes")
	assert.Less(t, step(), first)
}

func TestPublicAPI_Xavier(t *testing.T) {
	a, err := tensor.NewArena(make([]byte, tensor.KiB(1)))
	require.NoError(t, err)
	w, err := tensor.New(a, 3, 5)
	require.NoError(t, err)

	s, err := nn.ParseFillStrategy("xavier")
	require.NoError(t, err)
	require.NoError(t, nn.Fill(w, s, nn.NewMathRand(3)))

	for _, v := range w.Data() {
		assert.LessOrEqual(t, v, float32(0.8661))
		assert.GreaterOrEqual(t, v, float32(-0.8661))
	}

	_, err = nn.NewLinear(a, nn.LinearConfig{InRows: 1, InCols: 1, OutCols: 1, WeightInit: nn.FillXavierUniform})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
}
