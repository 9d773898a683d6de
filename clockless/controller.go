package clockless

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// LEDController is the set of operations a host framework calls on a strip
// driver.
type LEDController interface {
	// Init prepares the data pin.
	Init()
	// Show sends pixels, scaled per channel by scale/255.
	Show(pixels []RGB, scale RGB)
	// ShowColor sends n copies of c.
	ShowColor(c RGB, n int, scale RGB)
	// ClearLeds turns the first n LEDs off.
	ClearLeds(n int)
}

// Config holds the collaborators of a Controller. Every field is optional.
type Config struct {
	// System masks interrupts and receives tick compensation. The default
	// does neither, which is only safe where nothing can preempt.
	System System
	// Clock times the latch interval. Defaults to the real clock.
	Clock clockwork.Clock
	// Log receives debug output outside of transmissions.
	Log *zerolog.Logger
	// Observer is told about each completed frame.
	Observer Observer
}

// Controller drives one strip on one pin. It owns the dither state and the
// latch timestamp of that strip and must not be used from more than one
// goroutine at a time.
type Controller[T Timing, O Order, H Hardware] struct {
	nc     noCopy
	timing T
	hw     H
	sys    System
	clock  clockwork.Clock
	wait   *MinWait
	dither Dither
	log    zerolog.Logger
	obs    Observer
}

var _ LEDController = (*Controller[Profile, OrderGRB, Hardware])(nil)

// New returns a controller for the chipset timing on hw, sending channels
// in order O. Call Init before the first frame.
func New[O Order, T Timing, H Hardware](timing T, hw H, cfg Config) *Controller[T, O, H] {
	c := &Controller[T, O, H]{
		timing: timing,
		hw:     hw,
		sys:    cfg.System,
		clock:  cfg.Clock,
		log:    zerolog.Nop(),
		obs:    cfg.Observer,
	}
	if c.sys == nil {
		c.sys = nopSystem{}
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if cfg.Log != nil {
		c.log = cfg.Log.With().Str("order", OrderName[O]()).Logger()
	}
	c.wait = NewMinWait(c.clock, timing.Latch())
	return c
}

// Init configures the data pin as an output.
func (c *Controller[T, O, H]) Init() {
	c.hw.Configure()
}

// Show sends pixels, scaled per channel by scale/255 and dithered.
func (c *Controller[T, O, H]) Show(pixels []RGB, scale RGB) {
	var o O
	c.send(newFrame(rgbBytes(pixels), 3, 0, len(pixels), o.Reversed()), scale)
}

// ShowARGB sends pixels, ignoring their alpha byte.
func (c *Controller[T, O, H]) ShowARGB(pixels []ARGB, scale RGB) {
	var o O
	c.send(newFrame(argbBytes(pixels), 4, 1, len(pixels), o.Reversed()), scale)
}

// ShowColor sends n copies of color without walking a buffer.
func (c *Controller[T, O, H]) ShowColor(color RGB, n int, scale RGB) {
	px := [3]byte{color.R, color.G, color.B}
	c.send(newFrame(px[:], 0, 0, n, false), scale)
}

// ClearLeds sends n black pixels.
func (c *Controller[T, O, H]) ClearLeds(n int) {
	c.ShowColor(Black, n, Black)
}

// DitherState returns the dither accumulator left by the last frame.
func (c *Controller[T, O, H]) DitherState() [3]uint8 {
	return c.dither.State()
}

// Timing returns the timing the controller was built with.
func (c *Controller[T, O, H]) Timing() T { return c.timing }

// FrameDuration returns how long n pixels hold the line.
func (c *Controller[T, O, H]) FrameDuration(n int) time.Duration {
	return cyclesToDuration(frameCycles(n, Total(c.timing)), c.timing.Clock())
}

func frameCycles(n int, total uint32) uint64 {
	return uint64(max(n, 0)) * 24 * uint64(total)
}

// send runs one frame: latch wait, masked transmission, tick compensation.
func (c *Controller[T, O, H]) send(f frame, scale RGB) {
	c.log.Debug().
		Int("leds", f.n).
		Uint8("scale_r", scale.R).Uint8("scale_g", scale.G).Uint8("scale_b", scale.B).
		Msg("show")

	waitStart := c.clock.Now()
	c.wait.Wait()
	idle := c.clock.Since(waitStart)

	state := c.sys.DisableInterrupts()
	pass := c.dither.begin(scale)
	c.hw.Set(0)
	transmit[O](c.hw, c.timing, f, &pass)
	c.dither.end(&pass)

	// The tick interrupt was masked for the whole frame.
	cycles := frameCycles(f.n, Total(c.timing))
	if ms := cyclesToMicros(cycles, c.timing.Clock()) / 1000; ms > 0 {
		c.sys.AdvanceTicks(uint32(ms))
	}
	c.sys.RestoreInterrupts(state)
	c.wait.Mark()

	if c.obs != nil {
		c.obs.ObserveFrame(f.n, cyclesToDuration(cycles, c.timing.Clock()), idle)
	}
}

// noCopy may be embedded into structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
