// Package cortexm runs clockless controllers on ARM Cortex-M
// microcontrollers under TinyGo. SysTick paces the bits and the data pin is
// driven through its port set and clear registers.
//
//	hw := cortexm.New(machine.D2)
//	leds := clockless.New[clockless.OrderGRB](clockless.WS2812[clockless.MHz48]{}, hw,
//		clockless.Config{System: cortexm.System{}})
package cortexm
