//go:build cortexm && (atsamd21 || atsamd51 || nrf52 || nrf52840 || rp2040)

package cortexm

import (
	"runtime/volatile"
	"unsafe"

	"github.com/tinygo-org/ledstrip/clockless"
)

// SysTick control and status bits.
const (
	csrEnable    = 1 << 0
	csrTickInt   = 1 << 1
	csrClkSource = 1 << 2 // processor clock
	csrCountFlag = 1 << 16
)

type systickHW struct {
	CSR   volatile.Register32 // 0xE000E010
	RVR   volatile.Register32 // 0xE000E014
	CVR   volatile.Register32 // 0xE000E018
	CALIB volatile.Register32 // 0xE000E01C
}

var systick = (*systickHW)(unsafe.Pointer(uintptr(0xE000E010)))

// SysTick implements clockless.Timer on the core's SysTick counter, which
// counts processor cycles down from total-1 and wraps. Whatever the
// counter was doing before Start is put back by Stop.
type SysTick struct {
	csr, rvr, cvr uint32
}

var _ clockless.Timer = (*SysTick)(nil)

// NewSysTick returns a timer that leaves SysTick alone until Start.
func NewSysTick() *SysTick {
	return &SysTick{}
}

func (s *SysTick) Start(total uint32) {
	s.csr = systick.CSR.Get()
	s.rvr = systick.RVR.Get()
	s.cvr = systick.CVR.Get()

	systick.CSR.Set(0)
	systick.RVR.Set(total - 1)
	systick.CVR.Set(0)
	systick.CSR.Set(csrClkSource | csrEnable)
	// Reading CSR clears a stale COUNTFLAG.
	systick.CSR.Get()
}

// WaitBitStart spins until the counter wraps.
func (s *SysTick) WaitBitStart() {
	for systick.CSR.Get()&csrCountFlag == 0 {
	}
}

// WaitMark spins until the counter has dropped below mark, which is
// total-mark cycles into the bit.
func (s *SysTick) WaitMark(mark uint32) {
	for systick.CVR.Get() >= mark {
	}
}

func (s *SysTick) Stop() {
	s.WaitBitStart()
	systick.CSR.Set(0)
	systick.RVR.Set(s.rvr)
	systick.CVR.Set(s.cvr)
	systick.CSR.Set(s.csr &^ csrCountFlag)
}
