//go:build rp2040

package rp2pio

import (
	"machine"

	"github.com/pkg/errors"

	"github.com/tinygo-org/ledstrip/clockless"
)

// New loads Program, clocked for t, into the block of sm and returns a sink
// sending frames on pin. sm should be claimed beforehand; it is claimed
// when New returns either way.
func New(sm StateMachine, pin machine.Pin, t clockless.Timing, o Options) (*Sink, error) {
	sm.TryClaim()
	sysHz := machine.CPUFrequency()
	ck, err := ClockingFor(t, sysHz)
	if err != nil {
		return nil, err
	}
	block := sm.PIO()
	offset, err := block.AddProgram(Program(ck.Phases[0], ck.Phases[1], ck.Phases[2]), programOrigin)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	pin.Configure(machine.PinConfig{Mode: block.PinMode()})
	sm.SetPinsConsecutive(pin, 1, false)
	sm.SetPindirsConsecutive(pin, 1, true)

	cfg := DefaultStateMachineConfig()
	cfg.SetWrap(offset+programWrapTarget, offset+programWrap)
	cfg.SetSidesetParams(sidesetBits, false, false)
	cfg.SetSidesetPins(pin)
	// Only the TX FIFO is used.
	cfg.SetFIFOJoin(FifoJoinTx)
	cfg.SetClkDivIntFrac(ck.Whole, ck.Frac)
	cfg.SetOutShift(false, true, 24)
	sm.Init(offset, cfg)
	sm.SetEnabled(true)

	return NewSink(sm, t.Latch(), ck.BitTime(sysHz), o)
}
