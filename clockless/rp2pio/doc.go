// Package rp2pio sends clockless frames from an RP2040 PIO state machine.
//
// The state machine runs a four instruction bit loop whose delays are
// derived from a clockless.Timing, so every chipset the bit-banged
// controller supports works here too. The CPU applies the same dither and
// scale stage and only keeps the TX FIFO filled:
//
//	sm, _ := rp2pio.PIO0.ClaimStateMachine()
//	leds, err := rp2pio.New(sm, machine.GPIO16, clockless.WS2812[clockless.MHz125]{}, rp2pio.Options{})
//	...
//	leds.Show(pixels, clockless.White)
//
// Program, ClockingFor and Sink do not touch hardware and build on any
// target.
package rp2pio
