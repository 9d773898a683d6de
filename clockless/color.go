package clockless

import (
	"image/color"
	"unsafe"
)

// RGB is one pixel as it sits in a buffer: three bytes, no padding.
type RGB struct {
	R, G, B uint8
}

// ARGB is a pixel with a leading byte that is never transmitted.
type ARGB struct {
	A, R, G, B uint8
}

// Sizes the engine relies on when reading pixel buffers as bytes.
var (
	_ [3]byte = [unsafe.Sizeof(RGB{})]byte{}
	_ [4]byte = [unsafe.Sizeof(ARGB{})]byte{}
)

var (
	Black = RGB{}
	White = RGB{255, 255, 255}
)

// Gray returns a scale with the same value on all channels.
func Gray(v uint8) RGB { return RGB{v, v, v} }

// RGBA implements color.Color. The pixel is opaque.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// FromColor converts any color.Color, dropping alpha.
func FromColor(c color.Color) RGB {
	r16, g16, b16, _ := c.RGBA()
	return RGB{uint8(r16 >> 8), uint8(g16 >> 8), uint8(b16 >> 8)}
}

func rgbBytes(p []RGB) []byte {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), len(p)*3)
}

func argbBytes(p []ARGB) []byte {
	if len(p) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&p[0])), len(p)*4)
}
