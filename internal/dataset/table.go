// Package dataset provides tabular data sources and batch providers that
// feed a SoftmaxRegression during training.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/arenaml/internal/status"
)

// Table is an in-memory table of string cells with a header row.
//
// Rows are 0-based and exclude the header.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable builds a table from a header and data rows. Every row must have
// len(header) cells.
func NewTable(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, status.Invalid("dataset.NewTable", "empty header")
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, status.Invalid("dataset.NewTable", "row %d has %d cells, want %d", i, len(row), len(header))
		}
	}
	return &Table{header: header, rows: rows}, nil
}

// ReadCSV parses CSV from r. The first record is the header.
//
// CSV Format (Iris-style):
//
//	Id,SepalLengthCm,SepalWidthCm,PetalLengthCm,PetalWidthCm,Species
//	1,5.1,3.5,1.4,0.2,Iris-setosa
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: CSV is empty: %w", status.ErrInvalidArgument)
	}
	return NewTable(records[0], records[1:])
}

// LoadCSV opens path and parses it with ReadCSV.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Header returns the column names.
func (t *Table) Header() []string { return t.header }

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.header) }

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, error) {
	for i, h := range t.header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return 0, status.Invalid("dataset.Column", "no column %q", name)
}

// String returns the raw cell at (row, col).
func (t *Table) String(row, col int) (string, error) {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.header) {
		return "", status.Invalid("dataset.String", "cell (%d,%d) outside %dx%d", row, col, len(t.rows), len(t.header))
	}
	return t.rows[row][col], nil
}

// Float parses the cell at (row, col) as a float32.
func (t *Table) Float(row, col int) (float32, error) {
	s, err := t.String(row, col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, fmt.Errorf("dataset.Float: cell (%d,%d) %q: %w", row, col, s, status.ErrInvalidArgument)
	}
	return float32(v), nil
}
