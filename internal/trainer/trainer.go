// Package trainer wires configuration, data, model and run history into a
// single training run.
package trainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/born-ml/arenaml/internal/arena"
	"github.com/born-ml/arenaml/internal/config"
	"github.com/born-ml/arenaml/internal/dataset"
	"github.com/born-ml/arenaml/internal/metrics"
	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/internal/rng"
	"github.com/born-ml/arenaml/internal/runlog"
	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// providerAttempts bounds how often a failing batch read is retried.
const providerAttempts = 3

// Session is the outcome of Run: a trained model plus everything needed
// to query it.
type Session struct {
	RunID    uuid.UUID
	Arena    *arena.Arena
	Model    *model.SoftmaxRegression
	Features []string
	Classes  []string
	Result   model.TrainResult

	// Accuracy is measured over the full batches of the training table.
	Accuracy float64
}

// LoadTable reads the training table named by cfg: a CSV file, or the
// result of cfg.DataQuery against a SQLite database.
func LoadTable(ctx context.Context, cfg *config.Config) (*dataset.Table, error) {
	if cfg.DataQuery == "" {
		return dataset.LoadCSV(cfg.Data)
	}
	db, err := sql.Open("sqlite", cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("trainer: open %s: %w", cfg.Data, err)
	}
	defer db.Close()
	return dataset.QueryTable(ctx, db, cfg.DataQuery)
}

// Run trains a model as described by cfg. Progress is logged every
// cfg.LogEvery steps. When cfg.History is set the run and its loss curve
// are recorded there.
//
// Cancelling ctx stops training at the next batch boundary.
func Run(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}

	table, err := LoadTable(ctx, cfg)
	if err != nil {
		return nil, err
	}
	featureCols, labelCol, err := resolveColumns(table, cfg)
	if err != nil {
		return nil, err
	}
	if table.NumRows() < cfg.BatchSize {
		return nil, status.Invalid("trainer", "%d rows cannot fill a batch of %d", table.NumRows(), cfg.BatchSize)
	}
	provider, err := dataset.NewClassProvider(table, dataset.ClassProviderConfig{
		FeatureCols: featureCols,
		LabelCol:    labelCol,
		Classes:     cfg.Classes,
	})
	if err != nil {
		return nil, err
	}

	a, err := arena.New(make([]byte, arena.KiB(cfg.ArenaKiB)))
	if err != nil {
		return nil, err
	}
	wInit, bInit, err := cfg.Strategies()
	if err != nil {
		return nil, err
	}
	src := rng.Crypto()
	if cfg.Seed != 0 {
		src = rng.NewMathRand(cfg.Seed)
	}
	mcfg, err := model.NewConfig(cfg.BatchSize, len(featureCols), len(cfg.Classes), src, wInit, bInit)
	if err != nil {
		return nil, err
	}
	m, err := model.New(a, mcfg)
	if err != nil {
		return nil, err
	}
	x, err := tensor.New(a, mcfg.N, mcfg.D)
	if err != nil {
		return nil, err
	}
	y, err := tensor.New(a, mcfg.N, mcfg.C)
	if err != nil {
		return nil, err
	}
	logger.Printf("model N=%d D=%d C=%d arena_used=%d/%d", mcfg.N, mcfg.D, mcfg.C, a.Used(), a.Cap())

	s := &Session{
		RunID:    uuid.New(),
		Arena:    a,
		Model:    m,
		Features: cfg.FeatureColumns,
		Classes:  cfg.Classes,
	}

	var history *runlog.Store
	if cfg.History != "" {
		history, err = runlog.Open(ctx, cfg.History)
		if err != nil {
			return nil, err
		}
		defer history.Close()
		text, err := cfg.Marshal()
		if err != nil {
			return nil, fmt.Errorf("trainer: marshal config: %w", err)
		}
		if err := history.Start(ctx, s.RunID, text); err != nil {
			return nil, err
		}
	}

	var window metrics.Window
	timer := metrics.NewTimer(&window, cfg.BatchSize)
	var historyErr error

	tc := model.TrainConfig{
		Epochs:   cfg.Epochs,
		LR:       cfg.LR,
		LogEvery: 1,
		OnProgress: func(p model.Progress) {
			timer.Step(p.Loss)
			if p.Step%cfg.LogEvery != 0 {
				return
			}
			snap := window.Snapshot()
			logger.Printf("run=%s epoch=%d step=%d samples_per_sec=%.1f data_ms=%.3f compute_ms=%.3f loss=%.4f",
				s.RunID, p.Epoch, p.Step, snap.SamplesPerSec, snap.AvgDataMS, snap.AvgComputeMS, snap.LastLoss)
			if history != nil && historyErr == nil {
				historyErr = history.Progress(ctx, s.RunID, p)
			}
		},
	}

	p := timer.Provider(dataset.Retry(cancellable(ctx, provider), providerAttempts))
	res, trainErr := m.Train(p, tc, x, y)
	s.Result = res
	if history != nil {
		// A cancelled run still gets its outcome recorded.
		if err := history.Finish(context.WithoutCancel(ctx), s.RunID, res, trainErr); err != nil && historyErr == nil {
			historyErr = err
		}
	}
	if historyErr != nil {
		logger.Printf("run=%s history: %v", s.RunID, historyErr)
	}
	if trainErr != nil {
		return nil, trainErr
	}

	provider.Reset()
	pbuf, err := tensor.New(a, mcfg.N, mcfg.C)
	if err != nil {
		return nil, err
	}
	if s.Accuracy, err = Evaluate(m, provider, x, y, pbuf); err != nil {
		return nil, err
	}
	logger.Printf("run=%s done steps=%d epochs=%d loss=%.6f accuracy=%.3f",
		s.RunID, res.Steps, res.Epochs, res.LastLoss, s.Accuracy)
	return s, nil
}

// Evaluate runs one epoch of p through m and returns the share of rows
// whose most probable class matches the one-hot label. It returns 0 when
// p yields no batch.
func Evaluate(m *model.SoftmaxRegression, p model.BatchProvider, x, y, probs *tensor.Matrix) (float64, error) {
	var correct, total int
	for {
		err := p.NextBatch(x, y)
		if errors.Is(err, status.ErrDone) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("trainer: evaluate: %w", err)
		}
		if err := m.Infer(x, probs); err != nil {
			return 0, fmt.Errorf("trainer: evaluate: %w", err)
		}
		for r := 0; r < x.Rows(); r++ {
			got, err := probs.ArgMaxRow(r)
			if err != nil {
				return 0, err
			}
			want, err := y.ArgMaxRow(r)
			if err != nil {
				return 0, err
			}
			if got == want {
				correct++
			}
			total++
		}
	}
	if total == 0 {
		return 0, nil
	}
	return float64(correct) / float64(total), nil
}

// ParseSample parses a comma separated feature vector such as
// "5.1,3.5,1.4,0.2" holding exactly d values.
func ParseSample(text string, d int) ([]float32, error) {
	fields := strings.Split(text, ",")
	if len(fields) != d {
		return nil, status.Invalid("trainer.ParseSample", "%d values, want %d", len(fields), d)
	}
	out := make([]float32, d)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, status.Invalid("trainer.ParseSample", "value %d: %v", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func resolveColumns(t *dataset.Table, cfg *config.Config) ([]int, int, error) {
	label, err := t.Column(cfg.LabelColumn)
	if err != nil {
		return nil, 0, fmt.Errorf("trainer: label_column: %w", err)
	}
	features := make([]int, len(cfg.FeatureColumns))
	for i, name := range cfg.FeatureColumns {
		if features[i], err = t.Column(name); err != nil {
			return nil, 0, fmt.Errorf("trainer: feature_columns: %w", err)
		}
	}
	return features, label, nil
}

// cancellable stops p once ctx is done.
func cancellable(ctx context.Context, p model.BatchProvider) model.BatchProvider {
	return model.BatchProviderFunc(func(x, y *tensor.Matrix) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return p.NextBatch(x, y)
	})
}
