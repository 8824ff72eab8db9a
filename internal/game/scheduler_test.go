package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type tickRecorder struct {
	mu     sync.Mutex
	deltas []float64
}

func (r *tickRecorder) record(deltaMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas = append(r.deltas, deltaMs)
}

func (r *tickRecorder) snapshot() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.deltas))
	copy(out, r.deltas)
	return out
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	rec := &tickRecorder{}
	s := NewScheduler(10*time.Millisecond, rec.record)
	defer s.Stop()

	s.Start()
	s.Start()
	s.Start()
	assert.True(t, s.Running())

	time.Sleep(120 * time.Millisecond)
	s.Stop()

	// One timer instance: roughly 12 ticks, never the ~36 three
	// overlapping tickers would produce.
	got := len(rec.snapshot())
	assert.Greater(t, got, 5)
	assert.Less(t, got, 24)
}

func TestSchedulerPauseExcludesPausedTime(t *testing.T) {
	rec := &tickRecorder{}
	s := NewScheduler(10*time.Millisecond, rec.record)
	defer s.Stop()

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Pause()
	assert.False(t, s.Running())
	assert.True(t, s.Paused())

	// A long real-world pause must not show up as elapsed game time.
	time.Sleep(200 * time.Millisecond)
	s.Resume()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	for i, d := range rec.snapshot() {
		assert.Less(t, d, 100.0, "tick %d reported %vms: paused duration leaked into the timeline", i, d)
	}
}

func TestSchedulerStopClearsPauseState(t *testing.T) {
	s := NewScheduler(10*time.Millisecond, func(float64) {})
	s.Start()
	s.Pause()
	assert.True(t, s.Paused())

	s.Stop()
	assert.False(t, s.Paused())
	assert.False(t, s.Running())
}

func TestSchedulerReportsMeasuredDeltas(t *testing.T) {
	rec := &tickRecorder{}
	s := NewScheduler(20*time.Millisecond, rec.record)
	s.Start()
	time.Sleep(110 * time.Millisecond)
	s.Stop()

	deltas := rec.snapshot()
	assert.NotEmpty(t, deltas)
	for _, d := range deltas {
		assert.Greater(t, d, 0.0)
	}
}
