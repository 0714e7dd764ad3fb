package dataset_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/dataset"
	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

const irisSample = `Id,SepalLengthCm,SepalWidthCm,PetalLengthCm,PetalWidthCm,Species
1,5.1,3.5,1.4,0.2,Iris-setosa
2,7.0,3.2,4.7,1.4,Iris-versicolor
3,6.3,3.3,6.0,2.5,Iris-virginica
4,4.9,3.0,1.4,0.2,Iris-setosa
5,6.4,3.2,4.5,1.5,Iris-versicolor
`

var irisClasses = []string{"Iris-setosa", "Iris-versicolor", "Iris-virginica"}

func buffers(t *testing.T, n, d, c int) (*tensor.Matrix, *tensor.Matrix) {
	t.Helper()
	a, err := arena.New(make([]byte, arena.KiB(4)))
	require.NoError(t, err)
	x, err := tensor.New(a, n, d)
	require.NoError(t, err)
	y, err := tensor.New(a, n, c)
	require.NoError(t, err)
	return x, y
}

func irisProvider(t *testing.T) *dataset.ClassProvider {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(irisSample))
	require.NoError(t, err)
	p, err := dataset.NewClassProvider(tbl, dataset.ClassProviderConfig{
		FeatureCols: []int{1, 2, 3, 4},
		LabelCol:    5,
		Classes:     irisClasses,
	})
	require.NoError(t, err)
	return p
}

func TestReadCSV(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader(irisSample))
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.NumRows())
	assert.Equal(t, 6, tbl.NumCols())
	assert.Equal(t, "Species", tbl.Header()[5])

	v, err := tbl.Float(1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(7.0), v)

	s, err := tbl.String(2, 5)
	require.NoError(t, err)
	assert.Equal(t, "Iris-virginica", s)

	col, err := tbl.Column("petalwidthcm")
	require.NoError(t, err)
	assert.Equal(t, 4, col)

	_, err = tbl.Column("missing")
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = tbl.Float(0, 5)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = tbl.String(5, 0)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := dataset.ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	_, err = dataset.ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iris.csv")
	require.NoError(t, os.WriteFile(path, []byte(irisSample), 0o600))

	tbl, err := dataset.LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.NumRows())

	_, err = dataset.LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestClassProvider_Batches(t *testing.T) {
	p := irisProvider(t)
	x, y := buffers(t, 2, 4, 3)

	require.NoError(t, p.NextBatch(x, y))
	assert.Equal(t, []float32{5.1, 3.5, 1.4, 0.2, 7.0, 3.2, 4.7, 1.4}, x.Data())
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0}, y.Data())

	require.NoError(t, p.NextBatch(x, y))
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 0}, y.Data())

	// One row left, fewer than N: epoch ends and the cursor rewinds.
	assert.ErrorIs(t, p.NextBatch(x, y), status.ErrDone)

	require.NoError(t, p.NextBatch(x, y))
	assert.Equal(t, float32(5.1), x.Data()[0])
}

func TestClassProvider_ExactMultiple(t *testing.T) {
	p := irisProvider(t)
	x, y := buffers(t, 5, 4, 3)

	require.NoError(t, p.NextBatch(x, y))
	assert.ErrorIs(t, p.NextBatch(x, y), status.ErrDone)
	require.NoError(t, p.NextBatch(x, y))
}

func TestClassProvider_UnknownClass(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader("x,label\n1,cat\n2,dog\n"))
	require.NoError(t, err)
	p, err := dataset.NewClassProvider(tbl, dataset.ClassProviderConfig{
		FeatureCols: []int{0}, LabelCol: 1, Classes: []string{"cat"},
	})
	require.NoError(t, err)

	x, y := buffers(t, 2, 1, 1)
	assert.ErrorIs(t, p.NextBatch(x, y), status.ErrInvalidArgument)
}

func TestClassProvider_InvalidConfig(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader(irisSample))
	require.NoError(t, err)

	for _, cfg := range []dataset.ClassProviderConfig{
		{FeatureCols: nil, LabelCol: 5, Classes: irisClasses},
		{FeatureCols: []int{1}, LabelCol: 5, Classes: nil},
		{FeatureCols: []int{9}, LabelCol: 5, Classes: irisClasses},
		{FeatureCols: []int{1}, LabelCol: -1, Classes: irisClasses},
		{FeatureCols: []int{1}, LabelCol: 5, Classes: []string{"a", "a"}},
	} {
		_, err := dataset.NewClassProvider(tbl, cfg)
		assert.ErrorIs(t, err, status.ErrInvalidArgument)
	}

	_, err = dataset.NewClassProvider(nil, dataset.ClassProviderConfig{})
	assert.ErrorIs(t, err, status.ErrInvalidArgument)

	p := irisProvider(t)
	x, y := buffers(t, 2, 3, 3)
	assert.ErrorIs(t, p.NextBatch(x, y), status.ErrInvalidArgument)
}

func TestSliceProvider(t *testing.T) {
	p, err := dataset.NewSliceProvider(
		[][]float32{{0, 0}, {0, 1}, {5, 5}, {5, 6}},
		[]int{0, 0, 1, 1}, 2)
	require.NoError(t, err)

	x, y := buffers(t, 2, 2, 2)
	require.NoError(t, p.NextBatch(x, y))
	assert.Equal(t, []float32{0, 0, 0, 1}, x.Data())
	assert.Equal(t, []float32{1, 0, 1, 0}, y.Data())

	require.NoError(t, p.NextBatch(x, y))
	assert.Equal(t, []float32{0, 1, 0, 1}, y.Data())

	assert.ErrorIs(t, p.NextBatch(x, y), status.ErrDone)
}

func TestNewSliceProvider_Invalid(t *testing.T) {
	_, err := dataset.NewSliceProvider(nil, nil, 2)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = dataset.NewSliceProvider([][]float32{{1}}, []int{0, 1}, 2)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = dataset.NewSliceProvider([][]float32{{1}, {1, 2}}, []int{0, 1}, 2)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = dataset.NewSliceProvider([][]float32{{1}}, []int{2}, 2)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
	_, err = dataset.NewSliceProvider([][]float32{{1}}, []int{0}, 0)
	assert.ErrorIs(t, err, status.ErrInvalidArgument)
}

func TestRetry(t *testing.T) {
	errFlaky := errors.New("transient read")
	x, y := buffers(t, 1, 1, 1)

	calls := 0
	flaky := model.BatchProviderFunc(func(_, _ *tensor.Matrix) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, dataset.Retry(flaky, 3).NextBatch(x, y))
	assert.Equal(t, 3, calls)

	calls = 0
	err := dataset.Retry(flaky, 2).NextBatch(x, y)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 2, calls)

	done := 0
	exhausted := model.BatchProviderFunc(func(_, _ *tensor.Matrix) error {
		done++
		return status.ErrDone
	})
	assert.ErrorIs(t, dataset.Retry(exhausted, 5).NextBatch(x, y), status.ErrDone)
	assert.Equal(t, 1, done, "ErrDone must not be retried")

	for _, ctxErr := range []error{context.Canceled, context.DeadlineExceeded} {
		calls := 0
		stopped := model.BatchProviderFunc(func(_, _ *tensor.Matrix) error {
			calls++
			return fmt.Errorf("reading batch: %w", ctxErr)
		})
		err := dataset.Retry(stopped, 3).NextBatch(x, y)
		assert.ErrorIs(t, err, ctxErr)
		assert.NotContains(t, err.Error(), "attempts")
		assert.Equal(t, 1, calls)
	}
}

func TestQueryTable_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE iris(sepal REAL, petal REAL, species TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO iris VALUES (5.1, 1.4, 'Iris-setosa'), (6.3, 6.0, 'Iris-virginica'), (NULL, 2.0, 'Iris-versicolor')`)
	require.NoError(t, err)

	tbl, err := dataset.QueryTable(ctx, db, `SELECT sepal, petal, species FROM iris WHERE petal > ? ORDER BY rowid`, 1.0)
	require.NoError(t, err)
	assert.Equal(t, []string{"sepal", "petal", "species"}, tbl.Header())
	assert.Equal(t, 3, tbl.NumRows())

	v, err := tbl.Float(1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(6.0), v)

	s, err := tbl.String(0, 2)
	require.NoError(t, err)
	assert.Equal(t, "Iris-setosa", s)

	empty, err := tbl.String(2, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = dataset.QueryTable(ctx, db, `SELECT * FROM missing`)
	assert.Error(t, err)
}
