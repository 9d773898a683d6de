package rp2pio

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tinygo-org/ledstrip/clockless"
)

// Layout of the clockless program. One side-set bit drives the data pin;
// every instruction's delay stretches it to a whole phase of the bit.
const (
	bitloopOff = 0
	doOneOff   = 2
	doZeroOff  = 3

	programWrapTarget = bitloopOff
	programWrap       = doZeroOff
	programOrigin     = -1

	sidesetBits = 1
	// maxPhase is the longest phase, in state machine cycles, one
	// instruction can hold.
	maxPhase = 16
)

var asm = Assembler{SidesetBits: sidesetBits}

// Program returns the clockless bit loop with phases of p1, p2 and p3 state
// machine cycles. The line is high for p1, holds the data bit for p2 and is
// low for p3. Each phase must be between 1 and 16 cycles.
//
// With the output shift register refilled automatically every 24 bits, the
// state machine stalls with the line low once the TX FIFO runs dry, which
// is the latch.
func Program(p1, p2, p3 uint8) []uint16 {
	return []uint16{
		//     .wrap_target
		bitloopOff: asm.Out(SrcDestX, 1).Side(0).Delay(p3 - 1).Encode(),
		asm.Jmp(doZeroOff, JmpXZero).Side(1).Delay(p1 - 1).Encode(),
		doOneOff:  asm.Jmp(bitloopOff, JmpAlways).Side(1).Delay(p2 - 1).Encode(),
		doZeroOff: asm.Nop().Side(0).Delay(p2 - 1).Encode(),
		//     .wrap
	}
}

// Clocking is the divider and phase lengths that reproduce a timing on a
// state machine.
type Clocking struct {
	Whole  uint16
	Frac   uint8
	Phases [3]uint8
	// Bit is the length of one bit after rounding.
	Bit uint64 // state machine cycles
}

// ClockingFor derives the state machine clock for t on a system clock of
// sysHz. The divider is the smallest that fits the longest phase into one
// instruction, so the phases keep as much resolution as the program allows.
func ClockingFor(t clockless.Timing, sysHz uint32) (Clocking, error) {
	if err := clockless.ValidateTiming(t); err != nil {
		return Clocking{}, err
	}
	t1, t2, t3 := t.Periods()
	// Phases in 1/256ths of a system clock cycle.
	scale := func(c uint32) uint64 {
		return 256 * uint64(c) * uint64(sysHz) / uint64(t.Clock())
	}
	c := [3]uint64{scale(t1), scale(t2), scale(t3)}
	longest := max(c[0], c[1], c[2])
	div := max((longest+maxPhase-1)/maxPhase, 256)
	whole, frac, err := splitClkdiv(div)
	if err != nil {
		return Clocking{}, errors.Wrapf(err, "T1=%d T2=%d T3=%d at %d Hz", t1, t2, t3, t.Clock())
	}
	ck := Clocking{Whole: whole, Frac: frac}
	for i, v := range c {
		p := min(max((v+div/2)/div, 1), maxPhase)
		ck.Phases[i] = uint8(p)
		ck.Bit += p
	}
	return ck, nil
}

// BitTime returns the length of one bit on a system clock of sysHz.
func (ck Clocking) BitTime(sysHz uint32) time.Duration {
	div := 256*uint64(ck.Whole) + uint64(ck.Frac)
	return time.Duration(ck.Bit * div * uint64(time.Second) / (256 * uint64(sysHz)))
}
