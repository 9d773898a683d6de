//go:build cortexm && (atsamd21 || atsamd51 || nrf52 || nrf52840 || rp2040)

package main

import (
	"machine"
	"strconv"
	"time"

	"github.com/tinygo-org/ledstrip/clockless"
	"github.com/tinygo-org/ledstrip/clockless/cortexm"
)

var ws2812Pin string

/*
This example sweeps a dim color across a WS2812 strip from a 48 MHz part.
Specify the GPIO number via the -ldflags flag like so:
tinygo flash -target=$TARGET_NAME -ldflags "-X main.ws2812Pin=$GPIO_NUMBER" ./clockless/examples/ws2812/
*/
func main() {
	pinNum, err := strconv.Atoi(ws2812Pin)
	if err != nil {
		println("Invalid pin number: " + ws2812Pin)
		pinNum = 16
	}
	leds := clockless.New[clockless.OrderGRB](clockless.WS2812[clockless.MHz48]{},
		cortexm.New(machine.Pin(pinNum)), clockless.Config{System: cortexm.System{}})
	leds.Init()
	leds.ClearLeds(30)

	var pixels [30]clockless.RGB
	const lightIntensity = 64
	for i := 0; ; i++ {
		for j := range pixels {
			pixels[j] = clockless.Black
		}
		pixels[i%len(pixels)] = clockless.RGB{R: lightIntensity}
		pixels[(i+10)%len(pixels)] = clockless.RGB{G: lightIntensity}
		pixels[(i+20)%len(pixels)] = clockless.RGB{B: lightIntensity}
		// Fading through the dithered low end of the scale.
		leds.Show(pixels[:], clockless.Gray(uint8(i)))
		time.Sleep(time.Second / 30)
	}
}
