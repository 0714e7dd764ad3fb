package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// toDense converts m into a gonum matrix for reference computations.
func toDense(m *tensor.Matrix) *mat.Dense {
	data := make([]float64, len(m.Data()))
	for i, v := range m.Data() {
		data[i] = float64(v)
	}
	return mat.NewDense(m.Rows(), m.Cols(), data)
}

func assertMatchesDense(t *testing.T, want *mat.Dense, got *tensor.Matrix, tol float64) {
	t.Helper()
	r, c := want.Dims()
	require.Equal(t, r, got.Rows())
	require.Equal(t, c, got.Cols())
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v, err := got.Get(i, j)
			require.NoError(t, err)
			assert.InDelta(t, want.At(i, j), float64(v), tol, "element (%d,%d)", i, j)
		}
	}
}

func TestMatMul_Basic(t *testing.T) {
	a := newArena(t)
	lhs := fromRows(t, a, []float32{1, 2, 3}, []float32{4, 5, 6})
	rhs := fromRows(t, a, []float32{7, 8}, []float32{9, 10}, []float32{11, 12})

	out, err := tensor.MatMul(a, lhs, rhs)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Rows())
	assert.Equal(t, 2, out.Cols())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.Data())
}

func TestMatMul_MatchesGonum(t *testing.T) {
	a := newArena(t)
	rng := rand.New(rand.NewSource(7))
	shapes := [][3]int{{1, 1, 1}, {3, 4, 5}, {8, 2, 6}, {5, 7, 1}, {16, 16, 16}}

	for _, s := range shapes {
		m, k, n := s[0], s[1], s[2]
		lhs := filled(t, a, m, k, func(int) float32 { return float32(rng.NormFloat64()) })
		rhs := filled(t, a, k, n, func(int) float32 { return float32(rng.NormFloat64()) })

		got, err := tensor.MatMul(a, lhs, rhs)
		require.NoError(t, err)

		var want mat.Dense
		want.Mul(toDense(lhs), toDense(rhs))
		assertMatchesDense(t, &want, got, 1e-4)
	}
}

func TestMatMul_Identity(t *testing.T) {
	a := newArena(t)
	rng := rand.New(rand.NewSource(1))

	for _, s := range [][2]int{{1, 1}, {2, 3}, {5, 4}, {7, 7}} {
		rows, cols := s[0], s[1]
		x := filled(t, a, rows, cols, func(int) float32 { return float32(rng.Float64()*10 - 5) })
		id := filled(t, a, cols, cols, func(i int) float32 {
			if i/cols == i%cols {
				return 1
			}
			return 0
		})

		out, err := tensor.MatMul(a, x, id)
		require.NoError(t, err)
		assert.Equal(t, x.Data(), out.Data())
	}
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	a := newArena(t)
	lhs := filled(t, a, 2, 3, func(int) float32 { return 1 })
	rhs := filled(t, a, 2, 3, func(int) float32 { return 1 })

	used := a.Used()
	_, err := tensor.MatMul(a, lhs, rhs)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	assert.Equal(t, used, a.Used(), "rejected matmul must not allocate")

	out := filled(t, a, 2, 3, func(int) float32 { return -1 })
	assert.ErrorIs(t, tensor.MatMulInto(out, lhs, rhs), status.ErrInvalidArgument)
	for _, v := range out.Data() {
		assert.Equal(t, float32(-1), v, "output must be untouched")
	}
}

func TestMatMulInto(t *testing.T) {
	a := newArena(t)
	lhs := fromRows(t, a, []float32{1, 2}, []float32{3, 4})
	rhs := fromRows(t, a, []float32{5}, []float32{6})

	out, err := tensor.New(a, 2, 1)
	require.NoError(t, err)
	require.NoError(t, tensor.MatMulInto(out, lhs, rhs))
	assert.Equal(t, []float32{17, 39}, out.Data())

	wrong, err := tensor.New(a, 1, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, tensor.MatMulInto(wrong, lhs, rhs), status.ErrInvalidArgument)
}

func TestMatMulInto_RejectsAliasedOutput(t *testing.T) {
	a := newArena(t)
	sq := fromRows(t, a, []float32{1, 2}, []float32{3, 4})
	other := fromRows(t, a, []float32{1, 0}, []float32{0, 1})

	assert.ErrorIs(t, tensor.MatMulInto(sq, sq, other), status.ErrInvalidArgument)
	assert.ErrorIs(t, tensor.MatMulInto(sq, other, sq), status.ErrInvalidArgument)
	assert.Equal(t, []float32{1, 2, 3, 4}, sq.Data())
}

func TestTranspose(t *testing.T) {
	a := newArena(t)
	m := fromRows(t, a, []float32{1, 2, 3}, []float32{4, 5, 6})

	tr, err := tensor.Transpose(a, m)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 2, tr.Cols())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, tr.Data())

	assertMatchesDense(t, mat.DenseCopyOf(toDense(m).T()), tr, 0)
}

func TestTranspose_Involution(t *testing.T) {
	a := newArena(t)
	rng := rand.New(rand.NewSource(3))

	for _, s := range [][2]int{{1, 1}, {1, 5}, {4, 1}, {3, 7}, {6, 6}} {
		m := filled(t, a, s[0], s[1], func(int) float32 { return float32(rng.NormFloat64()) })
		once, err := tensor.Transpose(a, m)
		require.NoError(t, err)
		twice, err := tensor.Transpose(a, once)
		require.NoError(t, err)
		assert.True(t, tensor.Equal(m, twice, 0))
	}
}

func TestTransposeInto(t *testing.T) {
	a := newArena(t)
	m := fromRows(t, a, []float32{1, 2}, []float32{3, 4}, []float32{5, 6})

	out, err := tensor.New(a, 2, 3)
	require.NoError(t, err)
	require.NoError(t, tensor.TransposeInto(out, m))
	assert.Equal(t, []float32{1, 3, 5, 2, 4, 6}, out.Data())

	wrong, err := tensor.New(a, 3, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, tensor.TransposeInto(wrong, m), status.ErrInvalidArgument)

	sq := fromRows(t, a, []float32{1, 2}, []float32{3, 4})
	assert.ErrorIs(t, tensor.TransposeInto(sq, sq), status.ErrInvalidArgument)
}
