package clockless

import (
	"time"

	"github.com/pkg/errors"
)

// DefaultLatch is the idle time most chipsets need to latch a frame.
const DefaultLatch = 50 * time.Microsecond

// maxPeriod is the largest bit period a 24-bit SysTick reload can count.
const maxPeriod = 1 << 24

// Timing describes the waveform of one bit.
//
// Implementations are expected to be zero-size types returning constants,
// such as the chipset types in this package, so that the engine is
// specialized per chipset. Profile covers configurations only known at run
// time.
type Timing interface {
	// Periods returns T1, T2 and T3 in CPU cycles.
	Periods() (t1, t2, t3 uint32)
	// Clock returns the CPU frequency in Hz the periods are counted at.
	Clock() uint32
	// Latch returns the minimum idle time between two frames.
	Latch() time.Duration
}

// Frequency is a CPU clock known at compile time.
type Frequency interface {
	Hz() uint32
}

// Common CPU clocks of the supported boards.
type (
	MHz48  struct{} // SAMD21, RP2040 at reduced clock
	MHz64  struct{} // nRF52
	MHz84  struct{} // SAM3X8E
	MHz120 struct{} // SAMD51
	MHz125 struct{} // RP2040
	MHz133 struct{} // RP2040 overclocked
)

func (MHz48) Hz() uint32  { return 48_000_000 }
func (MHz64) Hz() uint32  { return 64_000_000 }
func (MHz84) Hz() uint32  { return 84_000_000 }
func (MHz120) Hz() uint32 { return 120_000_000 }
func (MHz125) Hz() uint32 { return 125_000_000 }
func (MHz133) Hz() uint32 { return 133_000_000 }

// NS converts ns nanoseconds to CPU cycles at F, rounding up.
func NS[F Frequency](ns uint32) uint32 {
	var f F
	return nsToCycles(ns, f.Hz())
}

func nsToCycles(ns, hz uint32) uint32 {
	return uint32((uint64(ns)*uint64(hz/1_000_000) + 999) / 1000)
}

// cyclesToMicros truncates like the tick compensation it feeds.
func cyclesToMicros(cycles uint64, hz uint32) uint64 {
	if hz == 0 {
		return 0
	}
	return cycles * 1_000_000 / uint64(hz)
}

func cyclesToDuration(cycles uint64, hz uint32) time.Duration {
	if hz == 0 {
		return 0
	}
	return time.Duration(cycles * uint64(time.Second) / uint64(hz))
}

// Profile is a Timing built at run time, for instance from a configuration
// file.
type Profile struct {
	T1, T2, T3 uint32 // cycles
	CPU        uint32 // Hz
	Reset      time.Duration
}

func (p Profile) Periods() (t1, t2, t3 uint32) { return p.T1, p.T2, p.T3 }
func (p Profile) Clock() uint32                { return p.CPU }

// Latch returns Reset, or DefaultLatch when Reset is zero.
func (p Profile) Latch() time.Duration {
	if p.Reset == 0 {
		return DefaultLatch
	}
	return p.Reset
}

// ProfileOf copies any Timing into a Profile.
func ProfileOf(t Timing) Profile {
	t1, t2, t3 := t.Periods()
	return Profile{T1: t1, T2: t2, T3: t3, CPU: t.Clock(), Reset: t.Latch()}
}

// ValidateTiming checks that every phase is at least one cycle long and that
// the whole bit fits the cycle counter. It cannot tell whether the values
// suit the chipset on the other end of the wire.
func ValidateTiming(t Timing) error {
	t1, t2, t3 := t.Periods()
	if t1 == 0 || t2 == 0 || t3 == 0 {
		return errors.Wrapf(ErrInvalidTiming, "T1=%d T2=%d T3=%d: every phase needs at least one cycle", t1, t2, t3)
	}
	if t.Clock() < 1_000_000 {
		return errors.Wrapf(ErrInvalidTiming, "CPU clock %d Hz is below 1 MHz", t.Clock())
	}
	if total := uint64(t1) + uint64(t2) + uint64(t3); total >= maxPeriod {
		return errors.Wrapf(ErrCycleRange, "%d cycles per bit", total)
	}
	return nil
}

// Total returns T1+T2+T3 for t.
func Total(t Timing) uint32 {
	t1, t2, t3 := t.Periods()
	return t1 + t2 + t3
}

// marks returns the counter values, counting down from total, at which the
// data phase and the low phase begin.
func marks(t Timing) (total, mark1, mark2 uint32) {
	t1, t2, t3 := t.Periods()
	total = t1 + t2 + t3
	mark1 = total - t1
	mark2 = mark1 - t2
	return total, mark1, mark2
}
