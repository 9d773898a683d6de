package clockless

import (
	"strings"

	"github.com/pkg/errors"
)

// Order maps the R, G and B bytes of a pixel to the order they go out on
// the wire.
type Order interface {
	// Offsets returns the pixel byte positions sent first, second and third.
	Offsets() (b0, b1, b2 uint8)
	// Reversed reports whether the strip is fed from its far end, that is
	// the last pixel of a buffer goes out first.
	Reversed() bool
}

// The six channel permutations. Most WS2812 strips are OrderGRB.
type (
	OrderRGB struct{}
	OrderRBG struct{}
	OrderGRB struct{}
	OrderGBR struct{}
	OrderBRG struct{}
	OrderBGR struct{}
)

func (OrderRGB) Offsets() (b0, b1, b2 uint8) { return 0, 1, 2 }
func (OrderRBG) Offsets() (b0, b1, b2 uint8) { return 0, 2, 1 }
func (OrderGRB) Offsets() (b0, b1, b2 uint8) { return 1, 0, 2 }
func (OrderGBR) Offsets() (b0, b1, b2 uint8) { return 1, 2, 0 }
func (OrderBRG) Offsets() (b0, b1, b2 uint8) { return 2, 0, 1 }
func (OrderBGR) Offsets() (b0, b1, b2 uint8) { return 2, 1, 0 }

func (OrderRGB) Reversed() bool { return false }
func (OrderRBG) Reversed() bool { return false }
func (OrderGRB) Reversed() bool { return false }
func (OrderGBR) Reversed() bool { return false }
func (OrderBRG) Reversed() bool { return false }
func (OrderBGR) Reversed() bool { return false }

// Reverse sends pixels last to first, keeping the channel order of O.
type Reverse[O Order] struct{}

func (Reverse[O]) Offsets() (b0, b1, b2 uint8) {
	var o O
	return o.Offsets()
}

func (Reverse[O]) Reversed() bool { return true }

// OrderName returns the three letter name of O, with a "~" prefix when it
// is reversed.
func OrderName[O Order]() string {
	var o O
	b0, b1, b2 := o.Offsets()
	const letters = "RGB"
	name := string([]byte{letters[b0], letters[b1], letters[b2]})
	if o.Reversed() {
		return "~" + name
	}
	return name
}

func normalizeOrder(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ParseOrder returns the wire offsets of a three letter order name such as
// "GRB", for transports that permute bytes themselves.
func ParseOrder(name string) (b0, b1, b2 uint8, err error) {
	n := normalizeOrder(name)
	if len(n) != 3 {
		return 0, 0, 0, errors.Wrapf(ErrUnknownOrder, "%q", name)
	}
	var off [3]uint8
	var seen [3]bool
	for i := range 3 {
		j := strings.IndexByte("RGB", n[i])
		if j < 0 || seen[j] {
			return 0, 0, 0, errors.Wrapf(ErrUnknownOrder, "%q", name)
		}
		seen[j] = true
		off[i] = uint8(j)
	}
	return off[0], off[1], off[2], nil
}
