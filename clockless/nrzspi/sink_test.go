package nrzspi

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/tinygo-org/ledstrip/clockless"
)

// decodeNRZ turns the four SPI bits of each data bit back into the bit.
func decodeNRZ(t *testing.T, raw []byte, n int) []byte {
	t.Helper()
	require.GreaterOrEqual(t, len(raw), 4*n)
	out := make([]byte, n)
	for i := range n {
		bits := binary.BigEndian.Uint32(raw[4*i:])
		for j := range 8 {
			switch sym := (bits >> (28 - 4*j)) & 0xF; sym {
			case 0b1110:
				out[i] |= 1 << (7 - j)
			case 0b1000:
			default:
				t.Fatalf("byte %d bit %d encoded as %04b", i, j, sym)
			}
		}
	}
	return out
}

func newSink(t *testing.T, o Options) (*Sink, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s, err := New(spitest.NewRecordRaw(&buf), o)
	require.NoError(t, err)
	buf.Reset()
	return s, &buf
}

func TestNewErrors(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(spitest.NewRecordRaw(&buf), Options{})
	assert.ErrorIs(t, err, ErrNoLEDs)
	_, err = New(spitest.NewRecordRaw(&buf), Options{LEDs: 1, Order: "RGBW"})
	assert.ErrorIs(t, err, clockless.ErrUnknownOrder)
}

func TestShowEncodes(t *testing.T) {
	s, buf := newSink(t, Options{LEDs: 2, Order: "RGB"})
	s.Show([]clockless.RGB{{0x10, 0x10, 0x10}, {0xF0, 0xA5, 0x01}}, clockless.White)
	require.NoError(t, s.Err())
	raw := buf.Bytes()
	// 12 SPI bytes per pixel, then three zero bytes of latch.
	require.Len(t, raw, 2*12+3)
	assert.Equal(t, []byte{0, 0, 0}, raw[24:])
	assert.Equal(t, []byte{0x10, 0x10, 0x10, 0xF0, 0xA5, 0x01}, decodeNRZ(t, raw, 6))
}

func TestLineOrder(t *testing.T) {
	tests := []struct {
		order   string
		reverse bool
		want    []byte
	}{
		{"GRB", false, []byte{2, 1, 3, 5, 4, 6}},
		{"RGB", false, []byte{1, 2, 3, 4, 5, 6}},
		{"BRG", false, []byte{3, 1, 2, 6, 4, 5}},
		{"BGR", true, []byte{6, 5, 4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			s, buf := newSink(t, Options{LEDs: 2, Order: tt.order, Reverse: tt.reverse})
			s.Show([]clockless.RGB{{1, 2, 3}, {4, 5, 6}}, clockless.White)
			assert.Equal(t, tt.want, decodeNRZ(t, buf.Bytes(), 6))
		})
	}
}

func TestShowClampsToLEDs(t *testing.T) {
	s, buf := newSink(t, Options{LEDs: 1, Order: "RGB"})
	s.Show([]clockless.RGB{{0xAA, 0, 0}, {0xBB, 0, 0}}, clockless.White)
	assert.Equal(t, []byte{0xAA, 0, 0}, decodeNRZ(t, buf.Bytes(), 3))

	buf.Reset()
	s.ShowColor(clockless.RGB{0, 0, 0x81}, 5, clockless.White)
	assert.Equal(t, []byte{0, 0, 0x81}, decodeNRZ(t, buf.Bytes(), 3))
}

func TestClearLeds(t *testing.T) {
	s, buf := newSink(t, Options{LEDs: 3})
	s.ClearLeds(3)
	assert.Equal(t, make([]byte, 9), decodeNRZ(t, buf.Bytes(), 9))
}

func TestDitherMatchesEngine(t *testing.T) {
	s, buf := newSink(t, Options{LEDs: 2, Order: "RGB"})
	s.Show([]clockless.RGB{{10, 10, 10}, {10, 10, 10}}, clockless.Gray(15))
	assert.Equal(t, [3]uint8{6, 6, 6}, s.DitherState())
	assert.Equal(t, []byte{1, 1, 1, 1, 1, 1}, decodeNRZ(t, buf.Bytes(), 6))
}

type frames struct{ leds []int }

func (f *frames) ObserveFrame(leds int, busy, idle time.Duration) {
	f.leds = append(f.leds, leds)
}

func TestObserverAndDuration(t *testing.T) {
	obs := &frames{}
	s, _ := newSink(t, Options{LEDs: 4, Observer: obs})
	s.ClearLeds(4)
	s.ClearLeds(2)
	assert.Equal(t, []int{4, 2}, obs.leds)
	// 96 SPI bits of 400ns per pixel.
	assert.Equal(t, 153600*time.Nanosecond, s.FrameDuration(4))
	assert.Zero(t, s.FrameDuration(-1))
	assert.NoError(t, s.Close())
}
