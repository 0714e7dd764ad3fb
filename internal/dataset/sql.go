package dataset

import (
	"context"
	"database/sql"
	"fmt"
)

// QueryTable runs query against db and returns the result set as a Table.
// Column names become the header; NULL cells become empty strings.
//
// The caller registers the driver, e.g. modernc.org/sqlite.
func QueryTable(ctx context.Context, db *sql.DB, query string, args ...any) (*Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dataset: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("dataset: columns: %w", err)
	}

	var records [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("dataset: scan row %d: %w", len(records), err)
		}
		rec := make([]string, len(cols))
		for i, c := range cells {
			rec[i] = c.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset: rows: %w", err)
	}
	return NewTable(cols, records)
}
