package sim

import (
	"sync"

	"github.com/tinygo-org/ledstrip/clockless"
)

// Edge is a level change on the data line.
type Edge struct {
	At    uint64 // cycle
	Level uint8
}

// Hardware implements clockless.Hardware in virtual time. Waits advance the
// cycle count to their target instead of spinning, so a recorded waveform
// is exact.
type Hardware struct {
	mu sync.Mutex

	now     uint64
	total   uint32
	period  uint64 // cycle the current bit period began at
	running bool

	configured bool
	level      uint8
	edges      []Edge

	starts, stops int
	late          int
	guard         *System
	unguarded     int
}

var _ clockless.Hardware = (*Hardware)(nil)

func NewHardware() *Hardware {
	return &Hardware{}
}

// Guard makes h count every pin write made while s has interrupts enabled.
func (h *Hardware) Guard(s *System) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.guard = s
}

func (h *Hardware) Configure() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.configured = true
	h.setLocked(0)
}

func (h *Hardware) Start(total uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total = total
	h.period = h.now
	h.running = true
	h.starts++
}

func (h *Hardware) WaitBitStart() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.period += uint64(h.total)
	h.advanceLocked(h.period)
}

func (h *Hardware) WaitMark(mark uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advanceLocked(h.period + uint64(h.total-mark))
}

func (h *Hardware) Set(level uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running && h.guard != nil && h.guard.InterruptsEnabled() {
		h.unguarded++
	}
	h.setLocked(level & 1)
}

// Stop ends the frame at the end of the last bit period.
func (h *Hardware) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.advanceLocked(h.period + uint64(h.total))
	h.running = false
	h.stops++
}

func (h *Hardware) advanceLocked(to uint64) {
	switch {
	case h.now < to:
		h.now = to
	case h.now > to:
		h.late++
	}
}

func (h *Hardware) setLocked(level uint8) {
	if level == h.level {
		return
	}
	h.level = level
	h.edges = append(h.edges, Edge{At: h.now, Level: level})
}

// Idle advances virtual time by cycles, as if the line sat untouched.
func (h *Hardware) Idle(cycles uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now += cycles
}

// Edges returns a copy of the waveform recorded so far.
func (h *Hardware) Edges() []Edge {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Edge(nil), h.edges...)
}

// TakeEdges returns the waveform recorded so far and forgets it.
func (h *Hardware) TakeEdges() []Edge {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := h.edges
	h.edges = nil
	return e
}

// Stats is a snapshot of what a Hardware has seen.
type Stats struct {
	Configured bool
	Level      uint8
	Now        uint64
	Starts     int
	Stops      int
	// Late counts waits whose target had already passed.
	Late int
	// Unguarded counts pin writes during a frame with interrupts enabled.
	Unguarded int
}

func (h *Hardware) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Configured: h.configured,
		Level:      h.level,
		Now:        h.now,
		Starts:     h.starts,
		Stops:      h.stops,
		Late:       h.late,
		Unguarded:  h.unguarded,
	}
}
