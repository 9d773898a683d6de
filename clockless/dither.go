package clockless

// ditherStep is how far the dither ramp moves per pixel.
const ditherStep = 3

// DitherMask returns the mask bounding the dither added at scale s: one bit
// per bit of precision the scale throws away. Scale 255 needs none, scale 1
// gets 0x7F and scale 0 gets 0xFF.
func DitherMask(s uint8) uint8 {
	e := uint8(0xFF)
	for ; s != 0; s >>= 1 {
		e >>= 1
	}
	return e
}

// QAdd8 adds a and b, saturating at 255.
func QAdd8(a, b uint8) uint8 {
	sum := uint16(a) + uint16(b)
	if sum > 0xFF {
		return 0xFF
	}
	return uint8(sum)
}

// Scale8 returns round(v*s/255) without dividing.
func Scale8(v, s uint8) uint8 {
	x := uint16(v)*uint16(s) + 128
	return uint8((x + x>>8) >> 8)
}

// Dither is the temporal dithering state of one strip. The zero value is
// ready to use. It is updated once per frame and must not be shared by
// controllers that run concurrently.
type Dither struct {
	stored [3]uint8
}

// State returns the per-channel accumulator saved by the last frame.
func (d *Dither) State() [3]uint8 { return d.stored }

// ditherPass is the working copy of the dither state for one frame.
// Channels are indexed by their position in the pixel: R, G, B.
type ditherPass struct {
	scale [3]uint8
	mask  [3]uint8
	acc   [3]uint8
}

func (d *Dither) begin(scale RGB) ditherPass {
	p := ditherPass{scale: [3]uint8{scale.R, scale.G, scale.B}}
	for i := range p.scale {
		p.mask[i] = DitherMask(p.scale[i])
		// Bits above the new mask belong to an older scale.
		p.acc[i] = d.stored[i] & p.mask[i]
	}
	return p
}

func (d *Dither) end(p *ditherPass) {
	d.stored = p.acc
}

// advance moves all three ramps one pixel on.
func (p *ditherPass) advance() {
	p.acc[0] = (p.acc[0] + ditherStep) & p.mask[0]
	p.acc[1] = (p.acc[1] + ditherStep) & p.mask[1]
	p.acc[2] = (p.acc[2] + ditherStep) & p.mask[2]
}

// correct dithers and scales raw for channel ch. Off stays off.
func (p *ditherPass) correct(ch uint8, raw uint8) uint8 {
	if raw != 0 {
		raw = QAdd8(raw, p.acc[ch])
	}
	return Scale8(raw, p.scale[ch])
}

// Correct runs one frame of the dither and scale stage without
// transmitting anything: dst receives the corrected R, G, B bytes of each
// pixel. It returns the number of bytes written, which is limited by both
// len(pixels) and len(dst)/3. Transports that encode bits themselves use
// this instead of the engine.
func (d *Dither) Correct(dst []byte, pixels []RGB, scale RGB) int {
	p := d.begin(scale)
	n := min(len(pixels), len(dst)/3)
	for i, px := range pixels[:n] {
		p.advance()
		dst[3*i+0] = p.correct(0, px.R)
		dst[3*i+1] = p.correct(1, px.G)
		dst[3*i+2] = p.correct(2, px.B)
	}
	d.end(&p)
	return 3 * n
}
