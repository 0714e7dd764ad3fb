package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/nn"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

func newSoftmax(t *testing.T, a *arena.Arena, n, c int) *nn.Softmax {
	t.Helper()
	s, err := nn.NewSoftmax(a, nn.SoftmaxConfig{InRows: n, InCols: c})
	require.NoError(t, err)
	return s
}

func TestSoftmax_RowsSumToOne(t *testing.T) {
	a := newArena(t)
	r := rand.New(rand.NewSource(5))
	z, err := tensor.New(a, 6, 5)
	require.NoError(t, err)
	for i := range z.Data() {
		z.Data()[i] = float32(r.NormFloat64() * 10)
	}

	s := newSoftmax(t, a, 6, 5)
	require.NoError(t, s.Forward(z))

	p := s.Output()
	for row := 0; row < p.Rows(); row++ {
		vals, err := p.Row(row)
		require.NoError(t, err)
		var sum float64
		for _, v := range vals {
			assert.Greater(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
			sum += float64(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestSoftmax_EqualLogits(t *testing.T) {
	a := newArena(t)
	s := newSoftmax(t, a, 1, 4)
	require.NoError(t, s.Forward(fromRows(t, a, []float32{-3, -3, -3, -3})))
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, s.Output().Data())
}

func TestSoftmax_ShiftInvariance(t *testing.T) {
	a := newArena(t)
	z := fromRows(t, a, []float32{1, 2, 3}, []float32{-1, 0, 0.5})
	shifted := fromRows(t, a, []float32{1001, 1002, 1003}, []float32{-51, -50, -49.5})

	s1 := newSoftmax(t, a, 2, 3)
	s2 := newSoftmax(t, a, 2, 3)
	require.NoError(t, s1.Forward(z))
	require.NoError(t, s2.Forward(shifted))

	assert.True(t, tensor.Equal(s1.Output(), s2.Output(), 1e-5))
}

func TestSoftmax_LargeLogitsStayFinite(t *testing.T) {
	a := newArena(t)
	s := newSoftmax(t, a, 1, 3)
	require.NoError(t, s.Forward(fromRows(t, a, []float32{1e4, 0, -1e4})))

	for _, v := range s.Output().Data() {
		assert.False(t, math.IsNaN(float64(v)))
		assert.False(t, math.IsInf(float64(v), 0))
	}
	assert.InDelta(t, 1.0, float64(s.Output().Data()[0]), 1e-6)
}

func TestSoftmax_Errors(t *testing.T) {
	a := newArena(t)

	_, err := nn.NewSoftmax(nil, nn.SoftmaxConfig{InRows: 1, InCols: 1})
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = nn.NewSoftmax(a, nn.SoftmaxConfig{InRows: 0, InCols: 1})
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	s := newSoftmax(t, a, 2, 2)
	assert.ErrorIs(t, s.Forward(fromRows(t, a, []float32{1, 2})), status.ErrInvalidArgument)
	assert.ErrorIs(t, s.Forward(nil), status.ErrInvalidArgument)
}
