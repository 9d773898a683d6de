package sim

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tinygo-org/ledstrip/clockless"
)

// WallTimer implements clockless.Timer by spinning on a clock, counting
// hz virtual cycles per second. Userspace cannot hold LED timing at real
// clock rates; pick hz low enough that scheduling noise is negligible, for
// instance to watch the waveform on a logic analyzer.
type WallTimer struct {
	clock  clockwork.Clock
	hz     uint32
	total  uint32
	period time.Time
}

var _ clockless.Timer = (*WallTimer)(nil)

func NewWallTimer(clock clockwork.Clock, hz uint32) *WallTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &WallTimer{clock: clock, hz: hz}
}

func (w *WallTimer) Start(total uint32) {
	w.total = total
	w.period = w.clock.Now()
}

func (w *WallTimer) WaitBitStart() {
	w.period = w.period.Add(w.cycles(w.total))
	w.spinUntil(w.period)
}

func (w *WallTimer) WaitMark(mark uint32) {
	w.spinUntil(w.period.Add(w.cycles(w.total - mark)))
}

func (w *WallTimer) Stop() {
	w.spinUntil(w.period.Add(w.cycles(w.total)))
}

func (w *WallTimer) cycles(n uint32) time.Duration {
	return time.Duration(uint64(n) * uint64(time.Second) / uint64(w.hz))
}

func (w *WallTimer) spinUntil(t time.Time) {
	for w.clock.Now().Before(t) {
	}
}
