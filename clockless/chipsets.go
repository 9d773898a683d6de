package clockless

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Nanos is a chipset waveform in nanoseconds, independent of the CPU clock.
type Nanos struct {
	T1, T2, T3 uint32
	Latch      time.Duration
}

// Datasheet timings.
var (
	WS2811Nanos     = Nanos{320, 320, 640, DefaultLatch}
	WS2811SlowNanos = Nanos{800, 800, 900, DefaultLatch}
	WS2812Nanos     = Nanos{250, 625, 375, DefaultLatch}
	TM1809Nanos     = Nanos{350, 350, 550, DefaultLatch}
	TM1803Nanos     = Nanos{700, 1100, 700, DefaultLatch}
	TM1829Nanos     = Nanos{340, 340, 550, 500 * time.Microsecond}
	UCS1903Nanos    = Nanos{500, 1500, 500, DefaultLatch}
	UCS1903BNanos   = Nanos{320, 320, 640, DefaultLatch}
	GW6205Nanos     = Nanos{800, 800, 800, DefaultLatch}
	GW6205FastNanos = Nanos{400, 400, 400, DefaultLatch}
)

var chipsets = map[string]Nanos{
	"ws2811":     WS2811Nanos,
	"ws2811-400": WS2811SlowNanos,
	"ws2812":     WS2812Nanos,
	"ws2812b":    WS2812Nanos,
	"neopixel":   WS2812Nanos,
	"tm1809":     TM1809Nanos,
	"tm1804":     TM1809Nanos,
	"tm1803":     TM1803Nanos,
	"tm1829":     TM1829Nanos,
	"ucs1903":    UCS1903Nanos,
	"ucs1903b":   UCS1903BNanos,
	"gw6205":     GW6205Nanos,
	"gw6205-800": GW6205FastNanos,
}

// Chipset looks up the timing of a chipset by name, ignoring case.
func Chipset(name string) (Nanos, error) {
	n, ok := chipsets[strings.ToLower(name)]
	if !ok {
		return Nanos{}, errors.Wrapf(ErrUnknownChip, "%q", name)
	}
	return n, nil
}

// Chipsets returns the names Chipset knows, sorted.
func Chipsets() []string {
	return slices.Sorted(maps.Keys(chipsets))
}

// Profile converts n to CPU cycles at cpuHz and validates the result.
func (n Nanos) Profile(cpuHz uint32) (Profile, error) {
	p := Profile{
		T1:    nsToCycles(n.T1, cpuHz),
		T2:    nsToCycles(n.T2, cpuHz),
		T3:    nsToCycles(n.T3, cpuHz),
		CPU:   cpuHz,
		Reset: n.Latch,
	}
	if err := ValidateTiming(p); err != nil {
		return Profile{}, maskAny(err)
	}
	return p, nil
}

func periodsAt[F Frequency](n Nanos) (t1, t2, t3 uint32) {
	return NS[F](n.T1), NS[F](n.T2), NS[F](n.T3)
}

// at supplies Clock and the default Latch to the chipset types.
type at[F Frequency] struct{}

func (at[F]) Clock() uint32 {
	var f F
	return f.Hz()
}

func (at[F]) Latch() time.Duration { return DefaultLatch }

// Chipsets, parameterized by the CPU clock they are counted at.
type (
	WS2811[F Frequency]     struct{ at[F] } // 800 kHz
	WS2811Slow[F Frequency] struct{ at[F] } // 400 kHz
	WS2812[F Frequency]     struct{ at[F] }
	TM1809[F Frequency]     struct{ at[F] }
	TM1803[F Frequency]     struct{ at[F] }
	TM1829[F Frequency]     struct{ at[F] }
	UCS1903[F Frequency]    struct{ at[F] }
	UCS1903B[F Frequency]   struct{ at[F] }
	GW6205[F Frequency]     struct{ at[F] } // 400 kHz
	GW6205Fast[F Frequency] struct{ at[F] } // 800 kHz
)

func (WS2811[F]) Periods() (t1, t2, t3 uint32)     { return periodsAt[F](WS2811Nanos) }
func (WS2811Slow[F]) Periods() (t1, t2, t3 uint32) { return periodsAt[F](WS2811SlowNanos) }
func (WS2812[F]) Periods() (t1, t2, t3 uint32)     { return periodsAt[F](WS2812Nanos) }
func (TM1809[F]) Periods() (t1, t2, t3 uint32)     { return periodsAt[F](TM1809Nanos) }
func (TM1803[F]) Periods() (t1, t2, t3 uint32)     { return periodsAt[F](TM1803Nanos) }
func (TM1829[F]) Periods() (t1, t2, t3 uint32)     { return periodsAt[F](TM1829Nanos) }
func (UCS1903[F]) Periods() (t1, t2, t3 uint32)    { return periodsAt[F](UCS1903Nanos) }
func (UCS1903B[F]) Periods() (t1, t2, t3 uint32)   { return periodsAt[F](UCS1903BNanos) }
func (GW6205[F]) Periods() (t1, t2, t3 uint32)     { return periodsAt[F](GW6205Nanos) }
func (GW6205Fast[F]) Periods() (t1, t2, t3 uint32) { return periodsAt[F](GW6205FastNanos) }

// Latch of the TM1829 is ten times the usual.
func (TM1829[F]) Latch() time.Duration { return TM1829Nanos.Latch }
