package clockless

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Strip is a pixel buffer in front of an LEDController, usable wherever a
// drivers.Displayer is expected. The strip is one row of Len pixels.
type Strip struct {
	ctrl   LEDController
	pixels []RGB

	// Brightness scales every channel on Display.
	Brightness uint8
}

var _ drivers.Displayer = (*Strip)(nil)

// NewStrip allocates a buffer of n pixels at full brightness.
func NewStrip(ctrl LEDController, n int) *Strip {
	return &Strip{
		ctrl:       ctrl,
		pixels:     make([]RGB, n),
		Brightness: 255,
	}
}

// Size implements drivers.Displayer.
func (s *Strip) Size() (x, y int16) {
	return int16(len(s.pixels)), 1
}

// SetPixel implements drivers.Displayer. Pixels outside the strip are
// ignored.
func (s *Strip) SetPixel(x, y int16, c color.RGBA) {
	if y != 0 || x < 0 || int(x) >= len(s.pixels) {
		return
	}
	s.pixels[x] = RGB{c.R, c.G, c.B}
}

// Display implements drivers.Displayer by sending the buffer.
func (s *Strip) Display() error {
	s.ctrl.Show(s.pixels, Gray(s.Brightness))
	return nil
}

// Pixels returns the buffer for direct writes.
func (s *Strip) Pixels() []RGB { return s.pixels }

// Fill sets every pixel to c.
func (s *Strip) Fill(c RGB) {
	for i := range s.pixels {
		s.pixels[i] = c
	}
}

// Clear zeroes the buffer and turns the strip off.
func (s *Strip) Clear() {
	s.Fill(Black)
	s.ctrl.ClearLeds(len(s.pixels))
}
