package sim

import (
	"sync"

	"github.com/tinygo-org/ledstrip/clockless"
)

// System implements clockless.System, remembering what was asked of it.
type System struct {
	mu       sync.Mutex
	enabled  bool
	disables int
	restores int
	advances []uint32
	ticks    clockless.MillisCounter
}

var _ clockless.System = (*System)(nil)

// NewSystem returns a System with interrupts enabled.
func NewSystem() *System {
	return &System{enabled: true}
}

func (s *System) DisableInterrupts() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	var state uintptr
	if s.enabled {
		state = 1
	}
	s.enabled = false
	s.disables++
	return state
}

func (s *System) RestoreInterrupts(state uintptr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = state&1 == 1
	s.restores++
}

func (s *System) AdvanceTicks(ms uint32) {
	s.mu.Lock()
	s.advances = append(s.advances, ms)
	s.mu.Unlock()
	s.ticks.AdvanceTicks(ms)
}

// InterruptsEnabled reports the current interrupt state.
func (s *System) InterruptsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Counts returns how often interrupts were disabled and restored.
func (s *System) Counts() (disables, restores int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disables, s.restores
}

// Advances returns every tick compensation in order.
func (s *System) Advances() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.advances...)
}

// Millis returns the compensated milliseconds.
func (s *System) Millis() uint64 { return s.ticks.Millis() }
