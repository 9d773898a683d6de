package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinygo-org/ledstrip/clockless"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	p, err := s.Timing()
	require.NoError(t, err)
	assert.Equal(t, clockless.Profile{T1: 12, T2: 30, T3: 18, CPU: 48_000_000, Reset: clockless.DefaultLatch}, p)
}

func TestParseYAML(t *testing.T) {
	s, err := Parse([]byte(`
chipset: TM1829
cpu_mhz: 84
order: rgb
reverse: true
leds: 150
brightness: 64
pattern: chase
color: "#ff8000"
`), ".yml")
	require.NoError(t, err)
	assert.Equal(t, 150, s.LEDs)
	assert.True(t, s.Reverse)
	assert.EqualValues(t, 64, s.Brightness)

	p, err := s.Timing()
	require.NoError(t, err)
	assert.EqualValues(t, 84_000_000, p.CPU)
	assert.Equal(t, 500*time.Microsecond, p.Latch())

	c, err := s.RGB()
	require.NoError(t, err)
	assert.Equal(t, clockless.RGB{0xff, 0x80, 0x00}, c)
}

func TestParseTOMLCustomTiming(t *testing.T) {
	s, err := Parse([]byte(`
chipset = ""
t1_ns = 250
t2_ns = 625
t3_ns = 375
cpu_mhz = 48
latch_us = 300
color = "#0f0"
`), ".toml")
	require.NoError(t, err)
	p, err := s.Timing()
	require.NoError(t, err)
	assert.Equal(t, clockless.Profile{T1: 12, T2: 30, T3: 18, CPU: 48_000_000, Reset: 300 * time.Microsecond}, p)

	c, err := s.RGB()
	require.NoError(t, err)
	assert.Equal(t, clockless.RGB{0, 0xff, 0}, c)
}

func TestParseRejects(t *testing.T) {
	for name, tc := range map[string]struct {
		data, ext string
	}{
		"unknown chipset": {"chipset: ws9999\n", ".yaml"},
		"bad order":       {"order: RGBW\n", ".yaml"},
		"no LEDs":         {"leds: 0\n", ".yaml"},
		"bad pattern":     {"pattern = \"strobe\"\n", ".toml"},
		"bad colour":      {"color: red\n", ".yaml"},
		"partial timing":  {"chipset: \"\"\nt1_ns: 100\n", ".yaml"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data), tc.ext)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	_, err := Parse([]byte("leds: 3\nspeed: 9\n"), ".yaml")
	assert.Error(t, err, "unknown field")
	_, err = Parse(nil, ".json")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTimingOutOfRange(t *testing.T) {
	s := Default()
	s.Chipset = ""
	s.T1, s.T2, s.T3 = 1, 1, 400_000_000
	s.CPUMHz = 1000
	_, err := s.Timing()
	assert.ErrorIs(t, err, clockless.ErrCycleRange)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("leds: 8\npattern: solid\n"), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.LEDs)
	assert.Equal(t, "solid", s.Pattern)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRegisterValidationPanics(t *testing.T) {
	v := newValidator()
	assert.Panics(t, func() {
		mustRegister(v, "", func(validator.FieldLevel) bool { return true })
	})
	assert.Error(t, v.Var("apa102", "chipset"))
	assert.NoError(t, v.Var("ws2812", "chipset"))
	assert.Error(t, v.Var("RGBW", "order"))
}
