package rp2pio

import (
	"runtime"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tinygo-org/ledstrip/clockless"
)

// FIFO is the transmit side of a state machine running Program.
type FIFO interface {
	TxPut(word uint32)
	IsTxFIFOFull() bool
	// ClearTxStall and IsTxStalled reach the sticky flag the state machine
	// raises when it runs out of data.
	ClearTxStall()
	IsTxStalled() bool
}

// Options configures a Sink. The zero value sends GRB.
type Options struct {
	Order   string // defaults to GRB
	Reverse bool

	Clock    clockwork.Clock
	Log      *zerolog.Logger
	Observer clockless.Observer
}

// Sink implements clockless.LEDController on a PIO state machine. The
// state machine times the bits, so interrupts stay enabled and no tick
// compensation is needed. The CPU only keeps the FIFO filled.
type Sink struct {
	fifo    FIFO
	offsets [3]uint8
	reverse bool
	bit     time.Duration

	dither clockless.Dither
	wait   *clockless.MinWait
	clock  clockwork.Clock
	log    zerolog.Logger
	obs    clockless.Observer

	rgb   []byte
	rev   []clockless.RGB
	color []clockless.RGB
}

var _ clockless.LEDController = (*Sink)(nil)

// NewSink returns a sink feeding fifo. latch is the idle time between
// frames and bit the length of one bit on the wire.
func NewSink(fifo FIFO, latch, bit time.Duration, o Options) (*Sink, error) {
	if o.Order == "" {
		o.Order = "GRB"
	}
	b0, b1, b2, err := clockless.ParseOrder(o.Order)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	s := &Sink{
		fifo:    fifo,
		offsets: [3]uint8{b0, b1, b2},
		reverse: o.Reverse,
		bit:     bit,
		wait:    clockless.NewMinWait(o.Clock, latch),
		clock:   o.Clock,
		log:     zerolog.Nop(),
		obs:     o.Observer,
	}
	if o.Log != nil {
		s.log = o.Log.With().Str("transport", "pio").Str("order", o.Order).Logger()
	}
	return s, nil
}

// Init does nothing; the state machine is set up by New.
func (s *Sink) Init() {}

// Show sends pixels, scaled per channel by scale/255 and dithered.
func (s *Sink) Show(pixels []clockless.RGB, scale clockless.RGB) {
	n := len(pixels)
	idle := s.idle()
	src := pixels
	if s.reverse {
		s.rev = resize(s.rev, n)
		for i := range src {
			s.rev[i] = src[n-1-i]
		}
		src = s.rev
	}
	s.rgb = resize(s.rgb, 3*n)
	s.dither.Correct(s.rgb, src, scale)

	start := s.clock.Now()
	for i := range n {
		px := s.rgb[3*i:]
		// The output shift register shifts left: the first wire byte goes
		// in the top bits.
		word := uint32(px[s.offsets[0]])<<24 | uint32(px[s.offsets[1]])<<16 | uint32(px[s.offsets[2]])<<8
		for s.fifo.IsTxFIFOFull() {
			runtime.Gosched()
		}
		s.fifo.TxPut(word)
	}
	if n > 0 {
		s.drain()
	}
	busy := s.clock.Since(start)
	s.wait.Mark()

	s.log.Debug().Int("leds", n).Dur("busy", busy).Msg("show")
	if s.obs != nil {
		s.obs.ObserveFrame(n, busy, idle)
	}
}

// ShowColor sends n copies of c.
func (s *Sink) ShowColor(c clockless.RGB, n int, scale clockless.RGB) {
	n = max(n, 0)
	s.color = resize(s.color, n)
	for i := range s.color {
		s.color[i] = c
	}
	s.Show(s.color, scale)
}

// ClearLeds sends n black pixels.
func (s *Sink) ClearLeds(n int) {
	s.ShowColor(clockless.Black, n, clockless.Black)
}

// drain returns once the last word has left the output shift register. The
// stall flag is cleared after the last put: the FIFO is not empty then, so
// the next stall is the end of the frame.
func (s *Sink) drain() {
	s.fifo.ClearTxStall()
	for !s.fifo.IsTxStalled() {
	}
}

func (s *Sink) idle() time.Duration {
	start := s.clock.Now()
	s.wait.Wait()
	return s.clock.Since(start)
}

// DitherState returns the dither accumulator left by the last frame.
func (s *Sink) DitherState() [3]uint8 { return s.dither.State() }

// FrameDuration returns how long n pixels take on the wire.
func (s *Sink) FrameDuration(n int) time.Duration {
	return time.Duration(24*max(n, 0)) * s.bit
}

func resize[E any](b []E, n int) []E {
	return slices.Grow(b[:0], n)[:n]
}
