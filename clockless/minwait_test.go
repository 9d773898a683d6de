package clockless

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestMinWaitUnmarked(t *testing.T) {
	clock := clockwork.NewFakeClock()
	w := NewMinWait(clock, time.Second)
	// Would deadlock on the fake clock if it slept.
	w.Wait()
	if got := w.Interval(); got != time.Second {
		t.Errorf("Interval() = %v, want 1s", got)
	}
}

func TestMinWaitElapsed(t *testing.T) {
	clock := clockwork.NewFakeClock()
	w := NewMinWait(clock, DefaultLatch)
	w.Mark()
	clock.Advance(DefaultLatch)
	w.Wait()
	w.Mark()
	clock.Advance(time.Hour)
	w.Wait()
}

func TestMillisCounter(t *testing.T) {
	var m MillisCounter
	m.Tick()
	m.AdvanceTicks(41)
	if got := m.Millis(); got != 42 {
		t.Errorf("Millis() = %d, want 42", got)
	}
}

func TestFrameCycles(t *testing.T) {
	if got := frameCycles(100, 40); got != 96_000 {
		t.Errorf("frameCycles(100, 40) = %d, want 96000", got)
	}
	if got := frameCycles(-3, 40); got != 0 {
		t.Errorf("frameCycles(-3, 40) = %d, want 0", got)
	}
	if got := cyclesToMicros(96_000, 1_000_000); got != 96_000 {
		t.Errorf("cyclesToMicros = %d, want 96000", got)
	}
	if got := cyclesToMicros(1440, 48_000_000); got != 30 {
		t.Errorf("cyclesToMicros = %d, want 30", got)
	}
}
