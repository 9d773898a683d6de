package clockless

// frame says where the bytes of one transmission come from.
type frame struct {
	data  []byte
	first int // offset of the first pixel to send, skip bytes included
	step  int // distance to the next pixel; negative when reversed, 0 repeats one pixel
	n     int // pixels to send
}

func newFrame(data []byte, stride, skip, n int, reversed bool) frame {
	n = max(n, 0)
	f := frame{data: data, first: skip, step: stride, n: n}
	if reversed && stride != 0 && n > 0 {
		f.first = skip + (n-1)*stride
		f.step = -stride
	}
	return f
}

// transmit clocks out every bit of f on hw, preparing each byte in the low
// phase of the bit before it. It must run with interrupts masked and has
// no way to notice a mark it arrived at too late.
func transmit[O Order, T Timing, H Hardware](hw H, timing T, f frame, p *ditherPass) {
	if f.n == 0 {
		return
	}
	var order O
	b0, b1, b2 := order.Offsets()
	total, mark1, mark2 := marks(timing)

	px := f.first
	p.advance()
	b := p.correct(b0, f.data[px+int(b0)])

	hw.Start(total)
	for i := 1; ; i++ {
		sendByte(hw, b, mark1, mark2)
		b = p.correct(b1, f.data[px+int(b1)])
		sendByte(hw, b, mark1, mark2)
		b = p.correct(b2, f.data[px+int(b2)])
		sendByte(hw, b, mark1, mark2)
		if i == f.n {
			break
		}
		// Time between pixels: move on and cycle the dither.
		px += f.step
		p.advance()
		b = p.correct(b0, f.data[px+int(b0)])
	}
	hw.Stop()
}

// sendByte sends b MSB first. The bit only decides the level written at
// mark1, never whether a write happens.
func sendByte[H Hardware](hw H, b uint8, mark1, mark2 uint32) {
	for range 8 {
		hw.WaitBitStart()
		hw.Set(1)
		hw.WaitMark(mark1)
		hw.Set(b >> 7)
		hw.WaitMark(mark2)
		hw.Set(0)
		b <<= 1
	}
}
