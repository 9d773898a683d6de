//go:build cortexm && (atsamd21 || atsamd51 || nrf52 || nrf52840 || rp2040)

package cortexm

import (
	"machine"
	"runtime/volatile"

	"github.com/tinygo-org/ledstrip/clockless"
)

// Pin implements clockless.Pin with single stores to the port's set and
// clear registers.
type Pin struct {
	pin  machine.Pin
	mask uint32
	// reg[0] clears, reg[1] sets.
	reg [2]*uint32
}

var _ clockless.Pin = (*Pin)(nil)

// NewPin wraps pin. The port registers are looked up by Configure.
func NewPin(pin machine.Pin) *Pin {
	return &Pin{pin: pin}
}

func (p *Pin) Configure() {
	p.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.pin.Low()
	set, mask := p.pin.PortMaskSet()
	clr, _ := p.pin.PortMaskClear()
	p.reg = [2]*uint32{clr, set}
	p.mask = mask
}

//go:inline
func (p *Pin) Set(level uint8) {
	volatile.StoreUint32(p.reg[level&1], p.mask)
}
