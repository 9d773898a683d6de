//go:build cortexm && (atsamd21 || atsamd51 || nrf52 || nrf52840 || rp2040)

package main

import (
	"image/color"
	"machine"
	"time"

	"tinygo.org/x/drivers"

	"github.com/tinygo-org/ledstrip/clockless"
	"github.com/tinygo-org/ledstrip/clockless/cortexm"
)

// Stoplight on the first pixel of a strip, drawn through drivers.Displayer.
func main() {
	const pin = machine.D6
	leds := clockless.New[clockless.OrderGRB](clockless.WS2812[clockless.MHz48]{},
		cortexm.New(pin), clockless.Config{System: cortexm.System{}})
	leds.Init()
	strip := clockless.NewStrip(leds, 8)
	strip.Brightness = 32

	var display drivers.Displayer = strip
	const maxVal = 255
	red := color.RGBA{R: maxVal}
	amber := color.RGBA{R: maxVal, G: maxVal / 4 * 3}
	green := color.RGBA{G: maxVal}
	set := func(c color.RGBA) {
		display.SetPixel(0, 0, c)
		display.Display()
	}
	for {
		println("red")
		set(red)
		time.Sleep(4 * time.Second)

		println("green/amber switching")
		for i := 0; i < 2; i++ {
			const semiSleep = time.Second / 2
			set(amber)
			time.Sleep(semiSleep)
			set(red)
			time.Sleep(semiSleep)
		}
		println("green")
		set(green)
		time.Sleep(6 * time.Second)

		println("amber")
		set(amber)
		time.Sleep(2 * time.Second)
	}
}
