package runner

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/tinygo-org/ledstrip/clockless"
)

// ErrUnknownPattern is returned by PatternByName.
var ErrUnknownPattern = errors.New("runner: unknown pattern")

// Pattern renders frame number frame into px.
type Pattern func(frame int, px []clockless.RGB, base clockless.RGB)

var patterns = map[string]Pattern{
	"solid":   Solid,
	"chase":   Chase,
	"rainbow": Rainbow,
}

func PatternByName(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPattern, "%q", name)
	}
	return p, nil
}

// Solid lights every pixel in base.
func Solid(_ int, px []clockless.RGB, base clockless.RGB) {
	for i := range px {
		px[i] = base
	}
}

// Chase lights a single pixel that moves one step per frame.
func Chase(frame int, px []clockless.RGB, base clockless.RGB) {
	for i := range px {
		px[i] = clockless.Black
	}
	if len(px) > 0 {
		px[frame%len(px)] = base
	}
}

// Rainbow spreads the hue circle over the strip and turns it 4 degrees
// per frame. base is ignored.
func Rainbow(frame int, px []clockless.RGB, _ clockless.RGB) {
	for i := range px {
		h := float64((i*360/len(px) + frame*4) % 360)
		r, g, b := colorful.Hsv(h, 1, 1).Clamped().RGB255()
		px[i] = clockless.RGB{R: r, G: g, B: b}
	}
}
