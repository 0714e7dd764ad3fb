package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/tensor"
)

// newArena returns a 64 KiB arena for a single test.
func newArena(t *testing.T) *arena.Arena {
	t.Helper()
	a, err := arena.New(make([]byte, arena.KiB(64)))
	require.NoError(t, err)
	return a
}

// fromRows allocates a matrix in a and fills it row by row.
func fromRows(t *testing.T, a *arena.Arena, rows ...[]float32) *tensor.Matrix {
	t.Helper()
	m, err := tensor.New(a, len(rows), len(rows[0]))
	require.NoError(t, err)
	for r, row := range rows {
		require.NoError(t, m.FillRow(r, row))
	}
	return m
}

// filled allocates a rows×cols matrix with element i set to f(i).
func filled(t *testing.T, a *arena.Arena, rows, cols int, f func(i int) float32) *tensor.Matrix {
	t.Helper()
	m, err := tensor.New(a, rows, cols)
	require.NoError(t, err)
	for i := range m.Data() {
		m.Data()[i] = f(i)
	}
	return m
}
