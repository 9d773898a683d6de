package rp2pio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tinygo-org/ledstrip/clockless"
)

// fifo stands in for a state machine. It reports full for busy polls after
// every put and stalls only once the stall flag has been cleared.
type fifo struct {
	mu      sync.Mutex
	words   []uint32
	busy    int
	polls   int
	cleared bool
	// events records puts and stall clears in order.
	events []string
}

func (f *fifo) TxPut(word uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.words = append(f.words, word)
	f.events = append(f.events, "put")
	f.polls = 0
}

func (f *fifo) IsTxFIFOFull() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.polls <= f.busy
}

func (f *fifo) ClearTxStall() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
	f.events = append(f.events, "clear")
}

func (f *fifo) IsTxStalled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func (f *fifo) Words() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.words...)
}

const testBit = 1250 * time.Nanosecond

func newSink(t *testing.T, o Options) (*Sink, *fifo) {
	t.Helper()
	f := &fifo{}
	s, err := NewSink(f, clockless.DefaultLatch, testBit, o)
	require.NoError(t, err)
	s.Init()
	return s, f
}

func TestNewSinkRejectsOrder(t *testing.T) {
	_, err := NewSink(&fifo{}, clockless.DefaultLatch, testBit, Options{Order: "RGBW"})
	assert.ErrorIs(t, err, clockless.ErrUnknownOrder)
}

func TestShowPacksWords(t *testing.T) {
	tests := []struct {
		order   string
		reverse bool
		want    []uint32
	}{
		{"", false, []uint32{0x02010300, 0x05040600}},
		{"RGB", false, []uint32{0x01020300, 0x04050600}},
		{"BRG", false, []uint32{0x03010200, 0x06040500}},
		{"BGR", true, []uint32{0x06050400, 0x03020100}},
	}
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			s, f := newSink(t, Options{Order: tt.order, Reverse: tt.reverse})
			s.Show([]clockless.RGB{{1, 2, 3}, {4, 5, 6}}, clockless.White)
			assert.Equal(t, tt.want, f.Words())
		})
	}
}

func TestShowWaitsForRoomAndDrains(t *testing.T) {
	s, f := newSink(t, Options{Order: "RGB"})
	f.busy = 3
	s.ShowColor(clockless.RGB{R: 0xAA}, 3, clockless.White)
	assert.Equal(t, []uint32{0xAA000000, 0xAA000000, 0xAA000000}, f.Words())
	// The stall flag is only cleared once the last word is queued.
	assert.Equal(t, []string{"put", "put", "put", "clear"}, f.events)
}

func TestShowEmptyFrame(t *testing.T) {
	s, f := newSink(t, Options{})
	s.Show(nil, clockless.White)
	s.ShowColor(clockless.White, -2, clockless.White)
	assert.Empty(t, f.events)
}

func TestClearLeds(t *testing.T) {
	s, f := newSink(t, Options{})
	s.Show([]clockless.RGB{{9, 9, 9}}, clockless.Gray(200))
	s.ClearLeds(2)
	assert.Equal(t, []uint32{0, 0}, f.Words()[1:])
}

func TestDitherMatchesEngine(t *testing.T) {
	s, f := newSink(t, Options{Order: "RGB"})
	s.Show([]clockless.RGB{{10, 10, 10}, {10, 10, 10}}, clockless.Gray(15))
	assert.Equal(t, [3]uint8{6, 6, 6}, s.DitherState())
	assert.Equal(t, []uint32{0x01010100, 0x01010100}, f.Words())
}

type frames struct {
	mu   sync.Mutex
	leds []int
	idle []time.Duration
}

func (f *frames) ObserveFrame(leds int, busy, idle time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leds = append(f.leds, leds)
	f.idle = append(f.idle, idle)
}

func TestShowWaitsForLatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := clockwork.NewFakeClock()
	obs := &frames{}
	s, f := newSink(t, Options{Clock: clock, Observer: obs})
	px := []clockless.RGB{{1, 2, 3}}
	s.Show(px, clockless.White)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Show(px, clockless.White)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Len(t, f.Words(), 1, "second frame started inside the latch interval")

	clock.Advance(clockless.DefaultLatch)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("second frame never started")
	}
	assert.Len(t, f.Words(), 2)
	assert.Equal(t, []int{1, 1}, obs.leds)
	assert.Equal(t, []time.Duration{0, clockless.DefaultLatch}, obs.idle)
}

func TestFrameDuration(t *testing.T) {
	s, _ := newSink(t, Options{})
	assert.Equal(t, 30*time.Microsecond, s.FrameDuration(1))
	assert.Zero(t, s.FrameDuration(-1))
}
