// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset provides tabular data sources and batch providers for
// model.SoftmaxRegression.
//
// Tables come from CSV (ReadCSV, LoadCSV) or any database/sql result set
// (QueryTable). ClassProvider turns a table into feature and one-hot label
// batches; SliceProvider does the same for in-memory data.
package dataset

import (
	"context"
	"database/sql"
	"io"

	"github.com/born-ml/arenaml/internal/dataset"
	"github.com/born-ml/arenaml/model"
)

// Table is an in-memory table of string cells with a header row.
type Table = dataset.Table

// ClassProviderConfig selects the columns a ClassProvider reads.
type ClassProviderConfig = dataset.ClassProviderConfig

// ClassProvider emits batches of features and one-hot labels from a Table.
type ClassProvider = dataset.ClassProvider

// SliceProvider emits batches from in-memory rows and class indices.
type SliceProvider = dataset.SliceProvider

// NewTable builds a table from a header and data rows.
func NewTable(header []string, rows [][]string) (*Table, error) { return dataset.NewTable(header, rows) }

// ReadCSV parses CSV from r. The first record is the header.
func ReadCSV(r io.Reader) (*Table, error) { return dataset.ReadCSV(r) }

// LoadCSV opens path and parses it with ReadCSV.
func LoadCSV(path string) (*Table, error) { return dataset.LoadCSV(path) }

// QueryTable runs query against db and returns the result set as a Table.
func QueryTable(ctx context.Context, db *sql.DB, query string, args ...any) (*Table, error) {
	return dataset.QueryTable(ctx, db, query, args...)
}

// NewClassProvider validates cfg against t.
func NewClassProvider(t *Table, cfg ClassProviderConfig) (*ClassProvider, error) {
	return dataset.NewClassProvider(t, cfg)
}

// NewSliceProvider validates that features and labels line up.
func NewSliceProvider(features [][]float32, labels []int, numClasses int) (*SliceProvider, error) {
	return dataset.NewSliceProvider(features, labels, numClasses)
}

// Retry wraps p so that a failing NextBatch is retried up to attempts
// times. tensor.ErrDone is never retried.
func Retry(p model.BatchProvider, attempts int) model.BatchProvider { return dataset.Retry(p, attempts) }
