package clockless

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// MinWait enforces the latch interval between two frames.
type MinWait struct {
	clock    clockwork.Clock
	interval time.Duration
	last     time.Time
}

// NewMinWait returns a MinWait that has never been marked; its first Wait
// does not block.
func NewMinWait(clock clockwork.Clock, interval time.Duration) *MinWait {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MinWait{clock: clock, interval: interval}
}

// Wait blocks until interval has passed since the last Mark.
func (w *MinWait) Wait() {
	if w.last.IsZero() {
		return
	}
	if d := w.interval - w.clock.Since(w.last); d > 0 {
		w.clock.Sleep(d)
	}
}

// Mark records the end of a frame.
func (w *MinWait) Mark() {
	w.last = w.clock.Now()
}

// Interval returns the enforced idle time.
func (w *MinWait) Interval() time.Duration { return w.interval }
