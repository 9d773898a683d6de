package sim

import (
	"github.com/pkg/errors"
)

// ErrWaveform is returned by Decode for a waveform no chip would accept.
var ErrWaveform = errors.New("sim: malformed waveform")

// Pulse is one bit period as seen on the line.
type Pulse struct {
	Start uint64 // cycle of the rising edge
	High  uint64 // cycles the line stayed high
	Low   uint64 // cycles it stayed low until the next rising edge; 0 for the last pulse
}

// Pulses splits a recorded waveform into high pulses. Falling edges
// without a preceding rising edge are ignored.
func Pulses(edges []Edge) []Pulse {
	var out []Pulse
	for i := 0; i < len(edges); i++ {
		if edges[i].Level != 1 {
			continue
		}
		if i+1 >= len(edges) {
			break
		}
		p := Pulse{Start: edges[i].At, High: edges[i+1].At - edges[i].At}
		if i+2 < len(edges) {
			p.Low = edges[i+2].At - edges[i+1].At
		}
		out = append(out, p)
		i++
	}
	return out
}

// Decode reads bytes back out of a waveform sent with the given phase
// lengths. Every pulse must be exactly T1 (a 0) or T1+T2 (a 1) cycles
// high and, except for the last, start exactly T1+T2+T3 cycles after the
// previous one.
func Decode(edges []Edge, t1, t2, t3 uint32) ([]byte, error) {
	pulses := Pulses(edges)
	if len(pulses)%8 != 0 {
		return nil, errors.Wrapf(ErrWaveform, "%d pulses is not a whole number of bytes", len(pulses))
	}
	total := uint64(t1) + uint64(t2) + uint64(t3)
	out := make([]byte, len(pulses)/8)
	for i, p := range pulses {
		var bit byte
		switch p.High {
		case uint64(t1):
		case uint64(t1) + uint64(t2):
			bit = 1
		default:
			return nil, errors.Wrapf(ErrWaveform, "pulse %d high for %d cycles", i, p.High)
		}
		if i+1 < len(pulses) && pulses[i+1].Start-p.Start != total {
			return nil, errors.Wrapf(ErrWaveform, "pulse %d lasts %d cycles, want %d", i, pulses[i+1].Start-p.Start, total)
		}
		out[i/8] |= bit << (7 - i%8)
	}
	return out, nil
}

// Bits renders a decoded stream as ones and zeros, one byte per group.
func Bits(data []byte) string {
	b := make([]byte, 0, len(data)*9)
	for i, v := range data {
		if i > 0 {
			b = append(b, ' ')
		}
		for j := 7; j >= 0; j-- {
			b = append(b, '0'+(v>>j)&1)
		}
	}
	return string(b)
}
