// Package runner drives one strip from a profile: it builds a controller
// on the requested output, renders a pattern into it and, on simulated
// hardware, decodes every frame back off the wire.
package runner

import (
	"bytes"
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"periph.io/x/host/v3"

	"github.com/tinygo-org/ledstrip/clockless"
	"github.com/tinygo-org/ledstrip/clockless/nrzspi"
	"github.com/tinygo-org/ledstrip/clockless/periphpin"
	"github.com/tinygo-org/ledstrip/clockless/sim"
	"github.com/tinygo-org/ledstrip/internal/config"
)

// DefaultSlowHz is the virtual clock of the GPIO output: one cycle per
// 10us, slow enough for userspace to keep up.
const DefaultSlowHz = 100_000

// Options selects the output and pacing. With neither GPIO nor SPI set the
// strip is simulated.
type Options struct {
	Strip  config.Strip
	Frames int     // 0 runs until ctx is done
	FPS    float64 // 0 sends frames back to back

	GPIO   string // periph pin name
	SPI    string // periph SPI port name
	SlowHz uint32 // cycles per second on GPIO, DefaultSlowHz when 0

	Clock    clockwork.Clock
	Log      zerolog.Logger
	Observer clockless.Observer
}

// Summary describes a finished run.
type Summary struct {
	Output  string
	Frames  int
	LEDs    int
	Elapsed time.Duration

	// Simulated output only.
	Decoded    int // bytes read back off the wire
	Mismatches int // frames whose bytes differ from the expected ones
	Late       int
	Unguarded  int
	Millis     uint64 // tick compensation
}

type output struct {
	name  string
	ctrl  clockless.LEDController
	close func() error

	// set for the simulated output
	hw  *sim.Hardware
	sys *sim.System
}

// Run sends frames until o.Frames are done or ctx ends, then turns the
// strip off.
func Run(ctx context.Context, o Options) (Summary, error) {
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if err := o.Strip.Validate(); err != nil {
		return Summary{}, err
	}
	timing, err := o.Strip.Timing()
	if err != nil {
		return Summary{}, err
	}
	pattern, err := PatternByName(o.Strip.Pattern)
	if err != nil {
		return Summary{}, err
	}
	base, err := o.Strip.RGB()
	if err != nil {
		return Summary{}, err
	}
	out, err := open(o, timing)
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := out.close(); err != nil {
			o.Log.Warn().Err(err).Msg("close output")
		}
	}()

	log := o.Log.With().Str("output", out.name).Logger()
	log.Info().
		Str("chipset", o.Strip.Chipset).
		Uint32("t1", timing.T1).Uint32("t2", timing.T2).Uint32("t3", timing.T3).
		Uint32("cpu_hz", timing.CPU).
		Int("leds", o.Strip.LEDs).
		Msg("strip ready")

	chk, err := newChecker(o.Strip, timing)
	if err != nil {
		return Summary{}, err
	}

	var ticker clockwork.Ticker
	if o.FPS > 0 {
		ticker = o.Clock.NewTicker(time.Duration(float64(time.Second) / o.FPS))
		defer ticker.Stop()
	}

	sum := Summary{Output: out.name, LEDs: o.Strip.LEDs}
	px := make([]clockless.RGB, o.Strip.LEDs)
	scale := clockless.Gray(o.Strip.Brightness)
	start := o.Clock.Now()

	out.ctrl.Init()
loop:
	for frame := 0; o.Frames == 0 || frame < o.Frames; frame++ {
		if frame > 0 {
			if ticker == nil {
				if ctx.Err() != nil {
					break loop
				}
			} else {
				select {
				case <-ctx.Done():
					break loop
				case <-ticker.Chan():
				}
			}
		}
		pattern(frame, px, base)
		out.ctrl.Show(px, scale)
		sum.Frames++
		if out.hw != nil {
			chk.frame(&sum, log, frame, out.hw.TakeEdges(), px, scale)
		}
	}

	out.ctrl.ClearLeds(o.Strip.LEDs)
	if out.hw != nil {
		chk.frame(&sum, log, -1, out.hw.TakeEdges(), make([]clockless.RGB, o.Strip.LEDs), clockless.Black)
		st := out.hw.Stats()
		sum.Late, sum.Unguarded = st.Late, st.Unguarded
		sum.Millis = out.sys.Millis()
	}
	sum.Elapsed = o.Clock.Since(start)

	log.Info().
		Str("frames", humanize.Comma(int64(sum.Frames))).
		Str("decoded", humanize.Bytes(uint64(sum.Decoded))).
		Int("mismatches", sum.Mismatches).
		Dur("elapsed", sum.Elapsed).
		Msg("done")
	return sum, nil
}

func open(o Options, timing clockless.Profile) (*output, error) {
	cfg := clockless.Config{Clock: o.Clock, Log: &o.Log, Observer: o.Observer}
	s := o.Strip

	if o.SPI != "" || o.GPIO != "" {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "periph host")
		}
	}

	switch {
	case o.SPI != "":
		sink, err := nrzspi.Open(o.SPI, nrzspi.Options{
			LEDs:     s.LEDs,
			Order:    s.Order,
			Reverse:  s.Reverse,
			Latch:    timing.Latch(),
			Clock:    o.Clock,
			Log:      &o.Log,
			Observer: o.Observer,
		})
		if err != nil {
			return nil, err
		}
		return &output{name: "spi", ctrl: sink, close: sink.Close}, nil

	case o.GPIO != "":
		pin, err := periphpin.Open(o.GPIO)
		if err != nil {
			return nil, err
		}
		hz := o.SlowHz
		if hz == 0 {
			hz = DefaultSlowHz
		}
		// Spinning needs the wall clock whatever o.Clock is.
		hw := clockless.Join(sim.NewWallTimer(clockwork.NewRealClock(), hz), pin)
		ctrl, err := clockless.Build(s.Order, s.Reverse, timing, hw, cfg)
		if err != nil {
			return nil, err
		}
		return &output{name: "gpio", ctrl: ctrl, close: func() error {
			if err := pin.Err(); err != nil {
				return err
			}
			return pin.Halt()
		}}, nil
	}

	hw := sim.NewHardware()
	sys := sim.NewSystem()
	hw.Guard(sys)
	cfg.System = sys
	ctrl, err := clockless.Build(s.Order, s.Reverse, timing, hw, cfg)
	if err != nil {
		return nil, err
	}
	return &output{name: "sim", ctrl: ctrl, close: func() error { return nil }, hw: hw, sys: sys}, nil
}

// checker predicts the bytes of each simulated frame with its own copy of
// the dither state and compares them to what was decoded off the wire.
type checker struct {
	timing    clockless.Profile
	offsets   [3]uint8
	reverse   bool
	dither    clockless.Dither
	rgb, want []byte
	ordered   []clockless.RGB
}

func newChecker(s config.Strip, timing clockless.Profile) (*checker, error) {
	b0, b1, b2, err := clockless.ParseOrder(s.Order)
	if err != nil {
		return nil, err
	}
	return &checker{
		timing:  timing,
		offsets: [3]uint8{b0, b1, b2},
		reverse: s.Reverse,
		rgb:     make([]byte, 3*s.LEDs),
		want:    make([]byte, 3*s.LEDs),
		ordered: make([]clockless.RGB, s.LEDs),
	}, nil
}

func (c *checker) frame(sum *Summary, log zerolog.Logger, frame int, edges []sim.Edge, px []clockless.RGB, scale clockless.RGB) {
	src := px
	if c.reverse {
		for i := range px {
			c.ordered[i] = px[len(px)-1-i]
		}
		src = c.ordered[:len(px)]
	}
	n := c.dither.Correct(c.rgb, src, scale)
	for i := 0; i < n; i += 3 {
		c.want[i] = c.rgb[i+int(c.offsets[0])]
		c.want[i+1] = c.rgb[i+int(c.offsets[1])]
		c.want[i+2] = c.rgb[i+int(c.offsets[2])]
	}

	got, err := sim.Decode(edges, c.timing.T1, c.timing.T2, c.timing.T3)
	if err != nil {
		sum.Mismatches++
		log.Error().Err(err).Int("frame", frame).Msg("undecodable waveform")
		return
	}
	sum.Decoded += len(got)
	if !bytes.Equal(got, c.want[:n]) {
		sum.Mismatches++
		log.Error().Int("frame", frame).Hex("got", got).Hex("want", c.want[:n]).Msg("frame mismatch")
		return
	}
	if e := log.Debug(); e.Enabled() && len(got) >= 3 {
		e.Int("frame", frame).Str("first", sim.Bits(got[:3])).Int("edges", len(edges)).Msg("frame")
	}
}
