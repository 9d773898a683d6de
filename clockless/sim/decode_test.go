package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edges(levels ...uint64) []Edge {
	var out []Edge
	for i, at := range levels {
		out = append(out, Edge{At: at, Level: uint8(1 - i%2)})
	}
	return out
}

func TestPulses(t *testing.T) {
	// Two pulses: 2 high / 3 low, then 4 high.
	p := Pulses(edges(10, 12, 15, 19))
	assert.Equal(t, []Pulse{{Start: 10, High: 2, Low: 3}, {Start: 15, High: 4}}, p)

	// A leading falling edge and a dangling rising edge are dropped.
	p = Pulses([]Edge{{At: 1, Level: 0}, {At: 5, Level: 1}, {At: 7, Level: 0}, {At: 9, Level: 1}})
	assert.Equal(t, []Pulse{{Start: 5, High: 2, Low: 2}}, p)
}

func TestDecode(t *testing.T) {
	// 0xA5 with t1=1 t2=2 t3=1.
	var at []uint64
	for i, bit := range []int{1, 0, 1, 0, 0, 1, 0, 1} {
		start := uint64(i * 4)
		high := uint64(1)
		if bit == 1 {
			high = 3
		}
		at = append(at, start, start+high)
	}
	data, err := Decode(edges(at...), 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA5}, data)
	assert.Equal(t, "10100101", Bits(data))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(edges(0, 1), 1, 2, 1)
	assert.ErrorIs(t, err, ErrWaveform, "partial byte")

	var bad []uint64
	for i := range 8 {
		bad = append(bad, uint64(i*4), uint64(i*4)+2)
	}
	_, err = Decode(edges(bad...), 1, 2, 1)
	assert.ErrorIs(t, err, ErrWaveform, "high for neither T1 nor T1+T2")

	var skew []uint64
	for i := range 8 {
		skew = append(skew, uint64(i*5), uint64(i*5)+1)
	}
	_, err = Decode(edges(skew...), 1, 2, 1)
	assert.ErrorIs(t, err, ErrWaveform, "period longer than T1+T2+T3")
}

func TestBits(t *testing.T) {
	assert.Equal(t, "", Bits(nil))
	assert.Equal(t, "11111111 00000000 00000001", Bits([]byte{0xFF, 0, 1}))
}
