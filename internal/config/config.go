// Package config loads strip profiles for the host tools.
package config

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tinygo-org/ledstrip/clockless"
)

var (
	// ErrFormat is returned for a file extension Load does not read.
	ErrFormat = errors.New("config: unsupported file format")
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid strip profile")
)

// Strip describes one strip and how to drive it.
type Strip struct {
	// Chipset names a built-in timing. T1, T2 and T3 take precedence when
	// all three are set, and are required without a chipset.
	Chipset string `yaml:"chipset" toml:"chipset" validate:"omitempty,chipset"`
	T1      uint32 `yaml:"t1_ns" toml:"t1_ns" validate:"required_without=Chipset"`
	T2      uint32 `yaml:"t2_ns" toml:"t2_ns" validate:"required_without=Chipset"`
	T3      uint32 `yaml:"t3_ns" toml:"t3_ns" validate:"required_without=Chipset"`

	CPUMHz  uint32 `yaml:"cpu_mhz" toml:"cpu_mhz" validate:"min=1,max=1000"`
	LatchUS uint32 `yaml:"latch_us" toml:"latch_us"`

	Order   string `yaml:"order" toml:"order" validate:"order"`
	Reverse bool   `yaml:"reverse" toml:"reverse"`
	LEDs    int    `yaml:"leds" toml:"leds" validate:"min=1,max=65535"`

	Brightness uint8  `yaml:"brightness" toml:"brightness"`
	Pattern    string `yaml:"pattern" toml:"pattern" validate:"oneof=solid chase rainbow"`
	Color      string `yaml:"color" toml:"color" validate:"hexcolor"`
}

// Default returns the profile of a 60 LED WS2812 strip on a 48 MHz part.
func Default() Strip {
	return Strip{
		Chipset:    "ws2812",
		CPUMHz:     48,
		Order:      "GRB",
		LEDs:       60,
		Brightness: 255,
		Pattern:    "rainbow",
		Color:      "#ffffff",
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "chipset", func(fl validator.FieldLevel) bool {
		_, err := clockless.Chipset(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "order", func(fl validator.FieldLevel) bool {
		_, _, _, err := clockless.ParseOrder(fl.Field().String())
		return err == nil
	})
	return v
}

// mustRegister panics when tag cannot be registered, as the struct tags
// using it would otherwise never fail.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("config: register %q validation: %v", tag, err))
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) profile on top of
// Default and validates it.
func Load(path string) (Strip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Strip{}, errors.WithStack(err)
	}
	s, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Strip{}, errors.Wrap(err, path)
	}
	return s, nil
}

// Parse decodes data in the format named by ext and validates it.
func Parse(data []byte, ext string) (Strip, error) {
	s := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return Strip{}, errors.Wrap(err, "yaml")
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Strip{}, errors.Wrap(err, "toml")
		}
	default:
		return Strip{}, errors.Wrapf(ErrFormat, "%q", ext)
	}
	if err := s.Validate(); err != nil {
		return Strip{}, err
	}
	return s, nil
}

// Validate checks every field.
func (s Strip) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	return nil
}

// Nanos returns the waveform in nanoseconds. A chipset may have its latch
// overridden by LatchUS.
func (s Strip) Nanos() (clockless.Nanos, error) {
	n := clockless.Nanos{T1: s.T1, T2: s.T2, T3: s.T3, Latch: clockless.DefaultLatch}
	if s.T1 == 0 || s.T2 == 0 || s.T3 == 0 {
		var err error
		if n, err = clockless.Chipset(s.Chipset); err != nil {
			return clockless.Nanos{}, err
		}
	}
	if s.LatchUS != 0 {
		n.Latch = time.Duration(s.LatchUS) * time.Microsecond
	}
	return n, nil
}

// Timing converts the profile to cycles of the configured CPU clock.
func (s Strip) Timing() (clockless.Profile, error) {
	n, err := s.Nanos()
	if err != nil {
		return clockless.Profile{}, err
	}
	return n.Profile(s.CPUMHz * 1_000_000)
}

// RGB parses Color.
func (s Strip) RGB() (clockless.RGB, error) {
	c, err := parseHex(s.Color)
	if err != nil {
		return clockless.RGB{}, errors.Wrapf(ErrInvalid, "color %q", s.Color)
	}
	return clockless.FromColor(c), nil
}

func parseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil || len(h) != 6 {
		return color.RGBA{}, errors.Errorf("bad hex colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
