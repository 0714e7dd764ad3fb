// Package metrics accumulates throughput and loss statistics for training
// log lines.
package metrics

import (
	"time"

	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/internal/tensor"
)

// Window accumulates timing stats across multiple steps.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	lastLoss float32
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss float32) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lastLoss = loss
}

// Steps returns the number of measurements since the last Snapshot.
func (w *Window) Steps() int { return w.steps }

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Steps: w.steps}
	total := w.data + w.compute
	if total > 0 {
		snap.SamplesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		snap.AvgDataMS = (w.data.Seconds() * 1000) / float64(w.steps)
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	snap.LastLoss = w.lastLoss

	*w = Window{}
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	Steps         int
	SamplesPerSec float64
	AvgDataMS     float64
	AvgComputeMS  float64
	LastLoss      float32
}

// Timer splits wall time between batch loading and the training step that
// follows it. Wrap the provider with Provider and call Step from the
// training progress hook.
type Timer struct {
	now       func() time.Time
	window    *Window
	batchSize int
	lastData  time.Duration
	dataDone  time.Time
}

// NewTimer returns a Timer recording into w.
func NewTimer(w *Window, batchSize int) *Timer {
	return &Timer{now: time.Now, window: w, batchSize: batchSize}
}

// Provider wraps p so that the time spent in NextBatch is measured.
func (t *Timer) Provider(p model.BatchProvider) model.BatchProvider {
	return model.BatchProviderFunc(func(x, y *tensor.Matrix) error {
		start := t.now()
		err := p.NextBatch(x, y)
		t.dataDone = t.now()
		t.lastData = t.dataDone.Sub(start)
		return err
	})
}

// Step records the step that just finished with the given loss.
func (t *Timer) Step(loss float32) {
	var compute time.Duration
	if !t.dataDone.IsZero() {
		compute = t.now().Sub(t.dataDone)
	}
	t.window.Record(t.batchSize, t.lastData, compute, loss)
}
