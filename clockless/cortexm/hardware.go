//go:build cortexm && (atsamd21 || atsamd51 || nrf52 || nrf52840 || rp2040)

package cortexm

import (
	"machine"

	"github.com/tinygo-org/ledstrip/clockless"
)

// Hardware pairs SysTick with a pin in one concrete type, so a controller
// instantiated on it makes no interface calls while sending.
type Hardware struct {
	SysTick
	Pin
}

var _ clockless.Hardware = (*Hardware)(nil)

// New returns the hardware for a strip on pin. The controller configures
// the pin in Init.
func New(pin machine.Pin) *Hardware {
	return &Hardware{Pin: Pin{pin: pin}}
}
