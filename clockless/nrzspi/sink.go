// Package nrzspi sends clockless frames through an SPI port with the
// periph.io nrzled encoder, which clocks the port at 2.5 MHz and stretches
// every data bit over four SPI bits (1110 or 1000). The dither and scale
// stage is the same as on a bit-banged pin, so a strip looks alike on
// either transport.
package nrzspi

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"

	"github.com/tinygo-org/ledstrip/clockless"
)

// SPIFreq is the only port clock nrzled accepts.
const SPIFreq = 2500 * physic.KiloHertz

// spiBitsPerBit is the width of one encoded data bit.
const spiBitsPerBit = 4

// ErrNoLEDs is returned for a sink of zero LEDs.
var ErrNoLEDs = errors.New("nrzspi: LED count must be positive")

// Options configures a Sink. Only LEDs is required.
type Options struct {
	LEDs    int
	Order   string // defaults to GRB
	Reverse bool
	Latch   time.Duration // defaults to clockless.DefaultLatch

	Clock    clockwork.Clock
	Log      *zerolog.Logger
	Observer clockless.Observer
}

// Sink implements clockless.LEDController on an SPI port. Write errors
// cannot be returned through that interface; the first one is kept for
// Err.
type Sink struct {
	dev     *nrzled.Dev
	closer  spi.PortCloser
	offsets [3]uint8
	reverse bool

	dither clockless.Dither
	wait   *clockless.MinWait
	clock  clockwork.Clock
	log    zerolog.Logger
	obs    clockless.Observer

	rgb   []byte
	wire  []byte
	color []clockless.RGB
	rev   []clockless.RGB
	err   error
}

var _ clockless.LEDController = (*Sink)(nil)

// New returns a sink on port. The port stays owned by the caller.
func New(port spi.Port, o Options) (*Sink, error) {
	if o.LEDs <= 0 {
		return nil, errors.Wrapf(ErrNoLEDs, "%d", o.LEDs)
	}
	if o.Order == "" {
		o.Order = "GRB"
	}
	b0, b1, b2, err := clockless.ParseOrder(o.Order)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if o.Latch == 0 {
		o.Latch = clockless.DefaultLatch
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	dev, err := nrzled.NewSPI(port, &nrzled.Opts{NumPixels: o.LEDs, Channels: 3, Freq: SPIFreq})
	if err != nil {
		return nil, errors.Wrap(err, "nrzled")
	}
	s := &Sink{
		dev:     dev,
		offsets: [3]uint8{b0, b1, b2},
		reverse: o.Reverse,
		wait:    clockless.NewMinWait(o.Clock, o.Latch),
		clock:   o.Clock,
		log:     zerolog.Nop(),
		obs:     o.Observer,
		rgb:     make([]byte, 3*o.LEDs),
		wire:    make([]byte, 3*o.LEDs),
		color:   make([]clockless.RGB, o.LEDs),
		rev:     make([]clockless.RGB, o.LEDs),
	}
	if o.Log != nil {
		s.log = o.Log.With().Str("transport", "spi").Str("order", o.Order).Logger()
	}
	return s, nil
}

// Open opens the named port from the spireg registry; "" picks the first
// one. host.Init must have run. Close releases the port.
func Open(name string, o Options) (*Sink, error) {
	port, err := spireg.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "open SPI port %q", name)
	}
	s, err := New(port, o)
	if err != nil {
		port.Close()
		return nil, err
	}
	s.closer = port
	return s, nil
}

// Init does nothing; the port is set up by New.
func (s *Sink) Init() {}

// Show sends as many pixels as the sink has LEDs. nrzled transmits its
// whole buffer, so LEDs past the end of a short frame get the colours
// they were last sent.
func (s *Sink) Show(pixels []clockless.RGB, scale clockless.RGB) {
	n := min(len(pixels), len(s.color))
	idle := s.idle()
	src := pixels[:n]
	if s.reverse {
		// Dither in the order the pixels go out.
		for i := range src {
			s.rev[i] = src[n-1-i]
		}
		src = s.rev[:n]
	}
	s.dither.Correct(s.rgb, src, scale)
	s.pack(n)

	start := s.clock.Now()
	if _, err := s.dev.Write(s.wire[:3*n]); err != nil {
		s.keep(errors.Wrap(err, "write frame"))
	}
	busy := s.clock.Since(start)
	s.wait.Mark()

	s.log.Debug().Int("leds", n).Dur("busy", busy).Msg("show")
	if s.obs != nil {
		s.obs.ObserveFrame(n, busy, idle)
	}
}

func (s *Sink) ShowColor(c clockless.RGB, n int, scale clockless.RGB) {
	n = max(min(n, len(s.color)), 0)
	for i := range s.color[:n] {
		s.color[i] = c
	}
	s.Show(s.color[:n], scale)
}

func (s *Sink) ClearLeds(n int) {
	s.ShowColor(clockless.Black, n, clockless.Black)
}

func (s *Sink) idle() time.Duration {
	start := s.clock.Now()
	s.wait.Wait()
	return s.clock.Since(start)
}

// pack permutes the corrected bytes of n pixels for nrzled, which always
// sends the second byte of a pixel first (RGB in, GRB out). The first two
// wire positions are swapped here so that its swap restores them.
func (s *Sink) pack(n int) {
	for i := range n {
		src := s.rgb[3*i:]
		dst := s.wire[3*i:]
		dst[0] = src[s.offsets[1]]
		dst[1] = src[s.offsets[0]]
		dst[2] = src[s.offsets[2]]
	}
}

func (s *Sink) keep(err error) {
	s.log.Error().Err(err).Msg("spi")
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first write error.
func (s *Sink) Err() error { return s.err }

// DitherState returns the dither accumulator left by the last frame.
func (s *Sink) DitherState() [3]uint8 { return s.dither.State() }

// FrameDuration returns how long n pixels take on the wire.
func (s *Sink) FrameDuration(n int) time.Duration {
	return time.Duration(int64(24*spiBitsPerBit*max(n, 0))) * SPIFreq.Period()
}

// Close turns the strip off and releases a port opened by Open.
func (s *Sink) Close() error {
	err := s.dev.Halt()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return errors.WithStack(err)
}

func (s *Sink) String() string {
	return s.dev.String()
}
