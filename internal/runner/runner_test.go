package runner

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tinygo-org/ledstrip/clockless"
	"github.com/tinygo-org/ledstrip/internal/config"
)

func strip(leds int, pattern string) config.Strip {
	s := config.Default()
	s.LEDs = leds
	s.Pattern = pattern
	return s
}

func TestRunSimulated(t *testing.T) {
	for _, pattern := range []string{"solid", "chase", "rainbow"} {
		for _, order := range clockless.Orders {
			for _, reverse := range []bool{false, true} {
				s := strip(7, pattern)
				s.Order = order
				s.Reverse = reverse
				s.Brightness = 100
				s.Color = "#c08040"

				sum, err := Run(context.Background(), Options{Strip: s, Frames: 4, Log: zerolog.Nop()})
				require.NoError(t, err)
				assert.Equal(t, "sim", sum.Output)
				assert.Equal(t, 4, sum.Frames)
				assert.Zero(t, sum.Mismatches, "%s %s reverse=%v", pattern, order, reverse)
				// Four frames and the final clear.
				assert.Equal(t, 5*3*7, sum.Decoded)
				assert.Zero(t, sum.Late)
				assert.Zero(t, sum.Unguarded)
			}
		}
	}
}

func TestRunCompensatesTicks(t *testing.T) {
	s := strip(100, "solid")
	s.Chipset = ""
	// 10, 20 and 10 cycles at 1 MHz: 96 ms for 100 LEDs.
	s.T1, s.T2, s.T3 = 10_000, 20_000, 10_000
	s.CPUMHz = 1
	sum, err := Run(context.Background(), Options{Strip: s, Frames: 2, Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.Zero(t, sum.Mismatches)
	assert.EqualValues(t, 3*96, sum.Millis)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := Run(ctx, Options{Strip: strip(3, "chase"), Log: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Frames)
	assert.Zero(t, sum.Mismatches)
}

func TestRunRejectsProfile(t *testing.T) {
	s := strip(0, "solid")
	_, err := Run(context.Background(), Options{Strip: s})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

type frameChan chan time.Duration

func (c frameChan) ObserveFrame(leds int, busy, idle time.Duration) { c <- idle }

func TestRunPacesFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := clockwork.NewFakeClock()
	frames := make(frameChan, 8)
	type result struct {
		sum Summary
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := Run(context.Background(), Options{
			Strip:    strip(2, "solid"),
			Frames:   3,
			FPS:      100,
			Clock:    clock,
			Log:      zerolog.Nop(),
			Observer: frames,
		})
		done <- result{sum, err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	next := func() time.Duration {
		select {
		case idle := <-frames:
			return idle
		case <-ctx.Done():
			t.Fatal("no frame")
			return 0
		}
	}

	assert.Zero(t, next())
	for range 2 {
		select {
		case <-frames:
			t.Fatal("frame sent before the next tick")
		case <-time.After(10 * time.Millisecond):
		}
		clock.Advance(10 * time.Millisecond)
		assert.Zero(t, next(), "a tick is longer than the latch interval")
	}

	// The clear right after the last frame waits out the latch.
	require.NoError(t, clock.BlockUntilContext(ctx, 2))
	clock.Advance(clockless.DefaultLatch)
	assert.Equal(t, clockless.DefaultLatch, next())

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, 3, r.sum.Frames)
	assert.Zero(t, r.sum.Mismatches)
	assert.Equal(t, 20*time.Millisecond+clockless.DefaultLatch, r.sum.Elapsed)
}
