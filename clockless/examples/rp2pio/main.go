//go:build rp2040

package main

import (
	"machine"
	"strconv"
	"time"

	"github.com/tinygo-org/ledstrip/clockless"
	"github.com/tinygo-org/ledstrip/clockless/rp2pio"
)

var ws2812Pin string

/*
This example drives a WS2812 strip from a PIO state machine, leaving the CPU
free between FIFO refills. Specify the GPIO number via the -ldflags flag like so:
tinygo flash -target=pico -ldflags "-X main.ws2812Pin=$GPIO_NUMBER" ./clockless/examples/rp2pio/
*/
func main() {
	pinNum, err := strconv.Atoi(ws2812Pin)
	if err != nil {
		println("Invalid pin number: " + ws2812Pin)
		pinNum = 16
	}
	sm, _ := rp2pio.PIO0.ClaimStateMachine()
	leds, err := rp2pio.New(sm, machine.Pin(pinNum), clockless.WS2812[clockless.MHz125]{}, rp2pio.Options{})
	if err != nil {
		panic(err.Error())
	}
	leds.ClearLeds(15)

	// Christmas lights on the first part of the strip.
	const lightIntensity = 64
	var pixels [15]clockless.RGB
	for i := range pixels {
		if i%2 == 0 {
			pixels[i] = clockless.RGB{R: lightIntensity}
		} else {
			pixels[i] = clockless.RGB{G: lightIntensity}
		}
	}
	leds.Show(pixels[:], clockless.White)
	time.Sleep(time.Second)

	// And sweep the brightness, down into the dithered low end.
	const sweepPeriod = time.Second / 60
	for {
		println("sweep")
		for s := 255; s >= 0; s-- {
			leds.Show(pixels[:], clockless.Gray(uint8(s)))
			time.Sleep(sweepPeriod)
		}
		for s := 0; s < 256; s++ {
			leds.Show(pixels[:], clockless.Gray(uint8(s)))
			time.Sleep(sweepPeriod)
		}
	}
}
