package game

import (
	"sync"
	"time"
)

// Scheduler drives the round timeline with a single repeating timer. Each
// firing reports the measured wall-clock delta since the previous firing,
// not the nominal interval, so the game stays correct under timer jitter
// or missed ticks.
type Scheduler struct {
	interval time.Duration
	onTick   func(deltaMs float64)

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
	paused  bool
}

func NewScheduler(interval time.Duration, onTick func(deltaMs float64)) *Scheduler {
	return &Scheduler{interval: interval, onTick: onTick}
}

// Start launches the timer goroutine. Starting twice is a no-op, not an
// error: exactly one timer instance exists per scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.paused = false
	s.stopCh = make(chan struct{})
	go s.loop(s.stopCh)
}

func (s *Scheduler) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Baseline starts at "now" so time spent paused is never counted
	// as elapsed game time.
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			if dt <= 0 {
				dt = s.interval
			}
			s.onTick(float64(dt) / float64(time.Millisecond))
		}
	}
}

// Pause halts the timer without touching round state.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.paused = true
	close(s.stopCh)
}

// Resume restarts the timer with a fresh elapsed-time baseline: there is
// no fast-forward over the paused duration.
func (s *Scheduler) Resume() {
	s.Start()
}

// Stop halts the timer and clears pause state.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopCh)
		s.running = false
	}
	s.paused = false
}

// Running reports whether the timer is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Paused reports whether the scheduler was halted by Pause (as opposed to
// never started or stopped).
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}
