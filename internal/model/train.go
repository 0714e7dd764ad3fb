package model

import (
	"errors"
	"fmt"

	"github.com/born-ml/arenaml/internal/status"
	"github.com/born-ml/arenaml/internal/tensor"
)

// BatchProvider fills caller-owned batch buffers.
//
// NextBatch writes the next [N, D] features into x and [N, C] labels into y.
// It returns nil when a batch was written and status.ErrDone when the epoch
// is exhausted, after resetting its own cursor for the next epoch. Any other
// error aborts training. Implementations must not retain x or y.
type BatchProvider interface {
	NextBatch(x, y *tensor.Matrix) error
}

// BatchProviderFunc adapts a plain function to BatchProvider.
type BatchProviderFunc func(x, y *tensor.Matrix) error

// NextBatch calls f.
func (f BatchProviderFunc) NextBatch(x, y *tensor.Matrix) error { return f(x, y) }

// TrainConfig controls a Train run.
type TrainConfig struct {
	Epochs int
	LR     float32

	// LogEvery > 0 calls OnProgress after every LogEvery-th step
	// counted across epochs. Zero disables the hook.
	LogEvery   int
	OnProgress func(Progress)
}

// Progress is reported to TrainConfig.OnProgress.
type Progress struct {
	Epoch int // 0-based
	Step  int // global, 1-based
	Loss  float32
}

// TrainResult summarizes a completed Train run.
type TrainResult struct {
	// LastLoss is the loss returned by the final TrainStep, or 0 when no
	// step ran.
	LastLoss float32

	// Steps counts TrainStep calls. Zero means the provider never yielded a
	// batch, which distinguishes an empty run from a near-zero loss.
	Steps int

	// Epochs counts completed epochs.
	Epochs int
}

// Train runs tc.Epochs epochs of minibatch SGD, pulling every batch from p
// into the reused buffers xbuf [N, D] and ybuf [N, C].
//
// Arguments are validated before the first batch is requested: a nil
// provider, a mismatched buffer or Epochs <= 0 return ErrInvalidArgument
// without calling p. An error from p other than status.ErrDone is
// returned wrapped together with the partial result.
func (m *SoftmaxRegression) Train(p BatchProvider, tc TrainConfig, xbuf, ybuf *tensor.Matrix) (TrainResult, error) {
	const op = "model.Train"
	var res TrainResult

	if f, ok := p.(BatchProviderFunc); p == nil || (ok && f == nil) {
		return res, status.Invalid(op, "nil batch provider")
	}
	if err := m.checkBatch(op, "Xbuf", xbuf, m.cfg.D); err != nil {
		return res, err
	}
	if err := m.checkBatch(op, "Ybuf", ybuf, m.cfg.C); err != nil {
		return res, err
	}
	if tc.Epochs <= 0 {
		return res, status.Invalid(op, "epochs %d must be > 0", tc.Epochs)
	}

	for epoch := 0; epoch < tc.Epochs; epoch++ {
		for {
			err := p.NextBatch(xbuf, ybuf)
			if errors.Is(err, status.ErrDone) {
				break
			}
			if err != nil {
				return res, fmt.Errorf("%s: epoch %d: next batch: %w", op, epoch, err)
			}

			loss, err := m.TrainStep(xbuf, ybuf, tc.LR)
			if err != nil {
				return res, fmt.Errorf("%s: epoch %d step %d: %w", op, epoch, res.Steps+1, err)
			}
			res.LastLoss = loss
			res.Steps++

			if tc.LogEvery > 0 && tc.OnProgress != nil && res.Steps%tc.LogEvery == 0 {
				tc.OnProgress(Progress{Epoch: epoch, Step: res.Steps, Loss: loss})
			}
		}
		res.Epochs++
	}
	return res, nil
}
