package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/arenaml/internal/model"
	"github.com/born-ml/arenaml/internal/tensor"
)

func TestWindow_Snapshot(t *testing.T) {
	var w Window
	w.Record(4, 10*time.Millisecond, 30*time.Millisecond, 0.9)
	w.Record(4, 30*time.Millisecond, 10*time.Millisecond, 0.5)
	assert.Equal(t, 2, w.Steps())

	snap := w.Snapshot()
	assert.Equal(t, 2, snap.Steps)
	assert.InDelta(t, 100.0, snap.SamplesPerSec, 1e-9)
	assert.InDelta(t, 20.0, snap.AvgDataMS, 1e-9)
	assert.InDelta(t, 20.0, snap.AvgComputeMS, 1e-9)
	assert.Equal(t, float32(0.5), snap.LastLoss)

	assert.Equal(t, Snapshot{}, w.Snapshot(), "snapshot resets the window")
}

func TestTimer(t *testing.T) {
	clock := time.Unix(0, 0)
	var w Window
	timer := NewTimer(&w, 8)
	timer.now = func() time.Time { return clock }

	p := timer.Provider(model.BatchProviderFunc(func(_, _ *tensor.Matrix) error {
		clock = clock.Add(5 * time.Millisecond)
		return nil
	}))

	for i := 0; i < 2; i++ {
		require.NoError(t, p.NextBatch(nil, nil))
		clock = clock.Add(15 * time.Millisecond)
		timer.Step(float32(i))
	}

	snap := w.Snapshot()
	assert.Equal(t, 2, snap.Steps)
	assert.InDelta(t, 5.0, snap.AvgDataMS, 1e-9)
	assert.InDelta(t, 15.0, snap.AvgComputeMS, 1e-9)
	assert.InDelta(t, 400.0, snap.SamplesPerSec, 1e-9)
	assert.Equal(t, float32(1), snap.LastLoss)
}
