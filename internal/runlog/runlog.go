// Package runlog keeps a SQLite history of training runs and their loss
// curves. Trained parameters are not stored.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/born-ml/arenaml/internal/model"
)

// ErrUnknownRun is returned for a run id that was never started.
var ErrUnknownRun = errors.New("runlog: unknown run")

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER,
	config      TEXT NOT NULL,
	steps       INTEGER NOT NULL DEFAULT 0,
	epochs      INTEGER NOT NULL DEFAULT 0,
	last_loss   REAL,
	error       TEXT
);
CREATE TABLE IF NOT EXISTS progress(
	run_id TEXT NOT NULL REFERENCES runs(id),
	step   INTEGER NOT NULL,
	epoch  INTEGER NOT NULL,
	loss   REAL NOT NULL,
	PRIMARY KEY (run_id, step)
);`

// Run is one row of the history.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time // zero while running or after a crash
	Config     string
	Steps      int
	Epochs     int
	LastLoss   float32
	Err        string
}

// Store is a handle on a history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path. Use
// ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("runlog: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("runlog: schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Start records a new run with its serialized configuration.
func (s *Store) Start(ctx context.Context, id uuid.UUID, config string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, started_at, config) VALUES(?, ?, ?)`,
		id.String(), s.now().UnixMilli(), config)
	if err != nil {
		return fmt.Errorf("runlog: start %s: %w", id, err)
	}
	return nil
}

// Progress appends one point of the loss curve.
func (s *Store) Progress(ctx context.Context, id uuid.UUID, p model.Progress) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress(run_id, step, epoch, loss) VALUES(?, ?, ?, ?)`,
		id.String(), p.Step, p.Epoch, float64(p.Loss))
	if err != nil {
		return fmt.Errorf("runlog: progress %s step %d: %w", id, p.Step, err)
	}
	return nil
}

// Finish stores the outcome of a run. trainErr may be nil.
func (s *Store) Finish(ctx context.Context, id uuid.UUID, res model.TrainResult, trainErr error) error {
	var msg sql.NullString
	if trainErr != nil {
		msg = sql.NullString{String: trainErr.Error(), Valid: true}
	}
	out, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, steps = ?, epochs = ?, last_loss = ?, error = ? WHERE id = ?`,
		s.now().UnixMilli(), res.Steps, res.Epochs, float64(res.LastLoss), msg, id.String())
	if err != nil {
		return fmt.Errorf("runlog: finish %s: %w", id, err)
	}
	if n, err := out.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, id)
	}
	return nil
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, config, steps, epochs, last_loss, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runlog: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			id       string
			started  int64
			finished sql.NullInt64
			loss     sql.NullFloat64
			msg      sql.NullString
		)
		if err := rows.Scan(&id, &started, &finished, &r.Config, &r.Steps, &r.Epochs, &loss, &msg); err != nil {
			return nil, fmt.Errorf("runlog: scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("runlog: run id %q: %w", id, err)
		}
		r.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			r.FinishedAt = time.UnixMilli(finished.Int64)
		}
		r.LastLoss = float32(loss.Float64)
		r.Err = msg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Curve returns the recorded loss curve of a run in step order.
func (s *Store) Curve(ctx context.Context, id uuid.UUID) ([]model.Progress, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, epoch, loss FROM progress WHERE run_id = ? ORDER BY step`, id.String())
	if err != nil {
		return nil, fmt.Errorf("runlog: curve %s: %w", id, err)
	}
	defer rows.Close()

	var curve []model.Progress
	for rows.Next() {
		var (
			p    model.Progress
			loss float64
		)
		if err := rows.Scan(&p.Step, &p.Epoch, &loss); err != nil {
			return nil, fmt.Errorf("runlog: scan progress: %w", err)
		}
		p.Loss = float32(loss)
		curve = append(curve, p)
	}
	return curve, rows.Err()
}
