//go:build cortexm && (atsamd21 || atsamd51 || nrf52 || nrf52840 || rp2040)

package cortexm

import (
	"runtime/interrupt"

	"github.com/tinygo-org/ledstrip/clockless"
)

// System masks interrupts with the TinyGo runtime. The runtime keeps time
// with a peripheral timer rather than SysTick on these chips, so a frame
// costs it no ticks and AdvanceTicks has nothing to do.
type System struct{}

var _ clockless.System = System{}

func (System) DisableInterrupts() uintptr {
	return uintptr(interrupt.Disable())
}

func (System) RestoreInterrupts(state uintptr) {
	interrupt.Restore(interrupt.State(state))
}

func (System) AdvanceTicks(ms uint32) {}
