package rp2pio

import (
	"errors"
	"testing"
	"time"

	"github.com/tinygo-org/ledstrip/clockless"
)

func TestProgramMatchesSDK(t *testing.T) {
	// ws2812.pio from the C SDK with T1=2, T2=5, T3=3.
	var expectedProgram = []uint16{
		//     .wrap_target
		0x6221, //  0: out    x, 1            side 0 [2]
		0x1123, //  1: jmp    !x, 3           side 1 [1]
		0x1400, //  2: jmp    0               side 1 [4]
		0xa442, //  3: nop                    side 0 [4]
		//     .wrap
	}
	program := Program(2, 5, 3)
	if len(program) != len(expectedProgram) {
		t.Fatalf("got %d instructions, want %d", len(program), len(expectedProgram))
	}
	for i := range program {
		if program[i] != expectedProgram[i] {
			t.Errorf("instr %d mismatch got!=expected: %#x != %#x", i, program[i], expectedProgram[i])
		}
	}
}

func TestProgramLongestPhase(t *testing.T) {
	program := Program(16, 16, 16)
	for i, instr := range program {
		if delay := instr >> 8 & 0xf; delay != 15 {
			t.Errorf("instr %d delay = %d, want 15", i, delay)
		}
	}
	if program[2]&0x1000 == 0 || program[3]&0x1000 != 0 {
		t.Errorf("side-set bits of %#x", program)
	}
}

func TestClockingFor(t *testing.T) {
	tests := []struct {
		name   string
		timing clockless.Timing
		sysHz  uint32
		want   Clocking
		bit    time.Duration
	}{
		{
			name:   "undivided",
			timing: clockless.Profile{T1: 2, T2: 5, T3: 3, CPU: 8_000_000},
			sysHz:  8_000_000,
			want:   Clocking{Whole: 1, Frac: 0, Phases: [3]uint8{2, 5, 3}, Bit: 10},
			bit:    1250 * time.Nanosecond,
		},
		{
			// 250ns, 625ns and 375ns on a 125 MHz system clock.
			name:   "ws2812",
			timing: clockless.WS2812[clockless.MHz48]{},
			sysHz:  125_000_000,
			want:   Clocking{Whole: 4, Frac: 226, Phases: [3]uint8{6, 16, 10}, Bit: 32},
			bit:    1250 * time.Nanosecond,
		},
		{
			name:   "same clock",
			timing: clockless.WS2812[clockless.MHz125]{},
			sysHz:  125_000_000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClockingFor(tt.timing, tt.sysHz)
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == (Clocking{}) {
				for i, p := range got.Phases {
					if p == 0 || p > maxPhase {
						t.Errorf("phase %d = %d", i, p)
					}
				}
				return
			}
			if got != tt.want {
				t.Errorf("ClockingFor() = %+v, want %+v", got, tt.want)
			}
			if bit := got.BitTime(tt.sysHz); bit != tt.bit {
				t.Errorf("BitTime() = %v, want %v", bit, tt.bit)
			}
		})
	}
}

func TestClockingForErrors(t *testing.T) {
	_, err := ClockingFor(clockless.Profile{T1: 0, T2: 5, T3: 3, CPU: 8_000_000}, 125_000_000)
	if !errors.Is(err, clockless.ErrInvalidTiming) {
		t.Errorf("zero phase: err = %v", err)
	}
	// 16 seconds of low phase needs a divider far past 65535.
	_, err = ClockingFor(clockless.Profile{T1: 1, T2: 1, T3: 16_000_000, CPU: 1_000_000}, 125_000_000)
	if !errors.Is(err, ErrClkDiv) {
		t.Errorf("long phase: err = %v", err)
	}
}

func TestSplitClkdiv(t *testing.T) {
	whole, frac, err := splitClkdiv(1250)
	if err != nil || whole != 4 || frac != 226 {
		t.Errorf("splitClkdiv(1250) = %d, %d, %v", whole, frac, err)
	}
	if _, _, err := splitClkdiv(255); !errors.Is(err, ErrClkDiv) {
		t.Errorf("splitClkdiv(255) err = %v", err)
	}
}
