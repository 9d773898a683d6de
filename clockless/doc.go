// Package clockless drives single-wire ("clockless") addressable RGB LED
// strips such as the WS2811, WS2812 and TM1809 by bit-banging a GPIO pin
// against a free-running cycle counter.
//
// Each bit occupies TOTAL = T1+T2+T3 CPU cycles. The pin goes high at the
// start of the period, takes the value of the bit at TOTAL-T1 cycles
// remaining and goes low at T3 cycles remaining, so a 0 is a T1 long pulse
// and a 1 is a T1+T2 long pulse.
//
// Transmission is a hard real-time operation. The engine has no way of
// noticing a missed mark: a late edge silently corrupts the frame on the
// strip. Correctness depends on the caller keeping interrupts masked for
// the whole frame (the Controller does this through System) and on T1, T2
// and T3 matching the chipset at the CPU frequency in use.
//
// Timing, color order and hardware are type parameters so that each
// configuration compiles to its own code path:
//
//	hw := cortexm.New(machine.D6)
//	leds := clockless.New[clockless.OrderGRB](clockless.WS2812[clockless.MHz48]{}, hw,
//		clockless.Config{System: cortexm.System{}})
//	leds.Init()
//	leds.Show(pixels, clockless.White)
//
// Build selects among the static instantiations when the color order is
// only known at run time.
package clockless
