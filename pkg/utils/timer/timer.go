// Package timer tracks elapsed time for a whole command and for its current stage.
package timer

import (
	"sync"
	"time"
)

// Timer measures total elapsed time and the time spent in the current stage.
type Timer interface {
	// Start resets the timer and begins measuring.
	Start()
	// NewStage marks the beginning of a new stage.
	NewStage()
	// GetTiming returns the total elapsed time and the elapsed time of the current stage.
	GetTiming() (time.Duration, time.Duration)
	// Stop freezes the timer; later GetTiming calls return the frozen values.
	Stop()
}

// StageTimer is the default Timer.
type StageTimer struct {
	mu         sync.Mutex
	now        func() time.Time
	start      time.Time
	stageStart time.Time
	stoppedAt  time.Time
	stopped    bool
}

// New returns a Timer that uses the wall clock.
func New() *StageTimer {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Timer reading time from now.
func NewWithClock(now func() time.Time) *StageTimer {
	return &StageTimer{now: now}
}

// Start resets the timer and begins measuring.
func (t *StageTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.now()
	t.start = current
	t.stageStart = current
	t.stopped = false
}

// NewStage marks the beginning of a new stage.
func (t *StageTimer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		t.start = t.now()
	}

	t.stageStart = t.now()
}

// GetTiming returns the total and current-stage durations.
func (t *StageTimer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return 0, 0
	}

	end := t.now()
	if t.stopped {
		end = t.stoppedAt
	}

	return end.Sub(t.start), end.Sub(t.stageStart)
}

// Stop freezes the timer.
func (t *StageTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.stoppedAt = t.now()
	t.stopped = true
}
