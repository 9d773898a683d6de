// Package periphpin drives a clockless data line through a periph.io GPIO
// pin. Userspace GPIO is far too slow and too easily preempted for real
// strips; it serves to watch the waveform at a reduced clock or to feed a
// logic analyzer.
package periphpin

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/tinygo-org/ledstrip/clockless"
)

// ErrNoPin is returned by Open for a name no driver registered.
var ErrNoPin = errors.New("periphpin: no such pin")

var levels = [2]gpio.Level{gpio.Low, gpio.High}

// Pin implements clockless.Pin on a gpio.PinOut. The Pin interface has no
// error return, so the first failed write is kept for Err.
type Pin struct {
	out gpio.PinOut
	err error
}

var _ clockless.Pin = (*Pin)(nil)

func New(out gpio.PinOut) *Pin {
	return &Pin{out: out}
}

// Open looks the pin up in the gpioreg registry. host.Init must have run.
func Open(name string) (*Pin, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Wrapf(ErrNoPin, "%q", name)
	}
	return New(p), nil
}

func (p *Pin) Configure() {
	p.keep(p.out.Out(gpio.Low))
}

func (p *Pin) Set(level uint8) {
	p.keep(p.out.Out(levels[level&1]))
}

func (p *Pin) keep(err error) {
	if err != nil && p.err == nil {
		p.err = errors.Wrap(err, p.out.String())
	}
}

// Err returns the first error a write returned, if any.
func (p *Pin) Err() error {
	return p.err
}

// Halt stops using the pin.
func (p *Pin) Halt() error {
	return p.out.Halt()
}

func (p *Pin) String() string {
	return p.out.String()
}
