package clockless

import (
	"sync/atomic"
	"time"
)

// Timer is the cycle counter bit periods are measured against. Every
// method busy-polls or writes registers; none may take a data-dependent
// number of cycles.
type Timer interface {
	// Start saves the counter configuration and restarts the counter with
	// a period of total cycles.
	Start(total uint32)
	// WaitBitStart spins until the next bit period begins.
	WaitBitStart()
	// WaitMark spins until the down-counter has reached mark within the
	// current period.
	WaitMark(mark uint32)
	// Stop restores the configuration saved by Start.
	Stop()
}

// Pin is the data line.
type Pin interface {
	// Configure makes the pin an output and drives it low.
	Configure()
	// Set drives the pin to bit 0 of level in constant time.
	Set(level uint8)
}

// Hardware is everything the engine touches while transmitting.
type Hardware interface {
	Timer
	Pin
}

type joined struct {
	Timer
	Pin
}

// Join combines separately implemented timer and pin.
func Join(t Timer, p Pin) Hardware {
	return joined{Timer: t, Pin: p}
}

// System is the part of the platform the controller suspends while a frame
// is on the wire.
type System interface {
	// DisableInterrupts masks interrupts and returns the previous state.
	DisableInterrupts() uintptr
	// RestoreInterrupts restores a state returned by DisableInterrupts.
	RestoreInterrupts(state uintptr)
	// AdvanceTicks adds ms milliseconds to the system time to make up
	// for tick interrupts lost while masked.
	AdvanceTicks(ms uint32)
}

type nopSystem struct{}

func (nopSystem) DisableInterrupts() uintptr { return 0 }
func (nopSystem) RestoreInterrupts(uintptr)  {}
func (nopSystem) AdvanceTicks(uint32)        {}

// MillisCounter is a software millisecond clock, for platforms whose time
// base is a tick interrupt.
type MillisCounter struct {
	ms atomic.Uint64
}

// AdvanceTicks implements the tick part of System.
func (m *MillisCounter) AdvanceTicks(n uint32) { m.ms.Add(uint64(n)) }

// Tick adds a single millisecond; call it from the tick interrupt.
func (m *MillisCounter) Tick() { m.ms.Add(1) }

// Millis returns the milliseconds counted so far.
func (m *MillisCounter) Millis() uint64 { return m.ms.Load() }

// Observer is told about every frame once interrupts are back on.
type Observer interface {
	// ObserveFrame reports the LED count, the time the frame held the
	// line and the time spent waiting for the latch interval before it.
	ObserveFrame(leds int, busy, idle time.Duration)
}
