package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// ClassProviderConfig selects the columns a ClassProvider reads.
type ClassProviderConfig struct {
	FeatureCols []int    // D columns parsed as float32
	LabelCol    int      // Column holding the class name
	Classes     []string // Class names; position is the one-hot index
}

// ClassProvider walks a Table in consecutive batches of N rows and emits
// features plus one-hot labels.
//
// When fewer than N rows remain the cursor is rewound and status.ErrDone is
// returned; the leftover rows are skipped for that epoch.
type ClassProvider struct {
	table    *Table
	features []int
	label    int
	classes  map[string]int
	cursor   int
}

// NewClassProvider validates cfg against t.
func NewClassProvider(t *Table, cfg ClassProviderConfig) (*ClassProvider, error) {
	const op = "dataset.NewClassProvider"
	if t == nil {
		return nil, status.Invalid(op, "nil table")
	}
	if len(cfg.FeatureCols) == 0 || len(cfg.Classes) == 0 {
		return nil, status.Invalid(op, "need at least one feature column and one class")
	}
	for _, c := range append([]int{cfg.LabelCol}, cfg.FeatureCols...) {
		if c < 0 || c >= t.NumCols() {
			return nil, status.Invalid(op, "column %d outside %d columns", c, t.NumCols())
		}
	}
	classes := make(map[string]int, len(cfg.Classes))
	for i, name := range cfg.Classes {
		if _, dup := classes[name]; dup {
			return nil, status.Invalid(op, "duplicate class %q", name)
		}
		classes[name] = i
	}
	return &ClassProvider{
		table:    t,
		features: append([]int(nil), cfg.FeatureCols...),
		label:    cfg.LabelCol,
		classes:  classes,
	}, nil
}

// NextBatch fills x [N, D] and y [N, C] from the next N rows.
func (p *ClassProvider) NextBatch(x, y *tensor.Matrix) error {
	const op = "dataset.ClassProvider.NextBatch"
	if err := checkBuffers(op, x, y, len(p.features), len(p.classes)); err != nil {
		return err
	}
	n := x.Rows()
	if p.cursor+n > p.table.NumRows() {
		p.cursor = 0
		return status.ErrDone
	}

	if err := y.FillScalar(0); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		row := p.cursor + i
		for j, col := range p.features {
			v, err := p.table.Float(row, col)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			if err := x.Set(i, j, v); err != nil {
				return err
			}
		}
		name, err := p.table.String(row, p.label)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		cls, ok := p.classes[name]
		if !ok {
			return status.Invalid(op, "row %d: unknown class %q", row, name)
		}
		if err := y.Set(i, cls, 1); err != nil {
			return err
		}
	}
	p.cursor += n
	return nil
}

// Reset rewinds the cursor to the first row.
func (p *ClassProvider) Reset() { p.cursor = 0 }

// SliceProvider serves batches from in-memory feature rows and class
// indices with the same cursor contract as ClassProvider.
type SliceProvider struct {
	features   [][]float32
	labels     []int
	numClasses int
	cursor     int
}

// NewSliceProvider validates that features and labels line up.
func NewSliceProvider(features [][]float32, labels []int, numClasses int) (*SliceProvider, error) {
	const op = "dataset.NewSliceProvider"
	if len(features) == 0 || len(features) != len(labels) {
		return nil, status.Invalid(op, "%d feature rows for %d labels", len(features), len(labels))
	}
	if numClasses <= 0 {
		return nil, status.Invalid(op, "numClasses %d must be > 0", numClasses)
	}
	d := len(features[0])
	for i, row := range features {
		if len(row) != d || d == 0 {
			return nil, status.Invalid(op, "row %d has %d features, want %d", i, len(row), d)
		}
		if labels[i] < 0 || labels[i] >= numClasses {
			return nil, status.Invalid(op, "row %d: label %d outside [0,%d)", i, labels[i], numClasses)
		}
	}
	return &SliceProvider{features: features, labels: labels, numClasses: numClasses}, nil
}

// NextBatch fills x [N, D] and one-hot y [N, C] from the next N rows.
func (p *SliceProvider) NextBatch(x, y *tensor.Matrix) error {
	const op = "dataset.SliceProvider.NextBatch"
	if err := checkBuffers(op, x, y, len(p.features[0]), p.numClasses); err != nil {
		return err
	}
	n := x.Rows()
	if p.cursor+n > len(p.features) {
		p.cursor = 0
		return status.ErrDone
	}
	if err := y.FillScalar(0); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := x.FillRow(i, p.features[p.cursor+i]); err != nil {
			return err
		}
		if err := y.Set(i, p.labels[p.cursor+i], 1); err != nil {
			return err
		}
	}
	p.cursor += n
	return nil
}

func checkBuffers(op string, x, y *tensor.Matrix, d, c int) error {
	if x == nil || y == nil || len(x.Data()) == 0 || len(y.Data()) == 0 {
		return status.Invalid(op, "nil batch buffer")
	}
	if x.Cols() != d {
		return &status.ShapeError{Op: op, Operand: "X", Want: status.Shape{x.Rows(), d}, Got: x.Shape()}
	}
	if y.Rows() != x.Rows() || y.Cols() != c {
		return &status.ShapeError{Op: op, Operand: "Y", Want: status.Shape{x.Rows(), c}, Got: y.Shape()}
	}
	return nil
}

// Retry wraps p so that a failing NextBatch is retried up to attempts times
// in total. status.ErrDone and context cancellation are passed through
// untouched.
func Retry(p model.BatchProvider, attempts int) model.BatchProvider {
	if attempts < 1 {
		attempts = 1
	}
	return model.BatchProviderFunc(func(x, y *tensor.Matrix) error {
		var err error
		for i := 0; i < attempts; i++ {
			err = p.NextBatch(x, y)
			if err == nil || errors.Is(err, status.ErrDone) {
				return err
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
		}
		return fmt.Errorf("dataset: batch failed after %d attempts: %w", attempts, err)
	})
}
