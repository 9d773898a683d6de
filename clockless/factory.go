package clockless

import "github.com/pkg/errors"

// Orders lists the names Build accepts.
var Orders = []string{"RGB", "RBG", "GRB", "GBR", "BRG", "BGR"}

// Build returns the controller instantiated for the named channel order,
// for configurations read at run time. Each of the twelve order and
// reversal combinations is its own compiled code path; nothing is decided
// per bit.
func Build[T Timing, H Hardware](order string, reverse bool, timing T, hw H, cfg Config) (LEDController, error) {
	if err := ValidateTiming(timing); err != nil {
		return nil, maskAny(err)
	}
	switch normalizeOrder(order) {
	case "RGB":
		return build[OrderRGB](reverse, timing, hw, cfg), nil
	case "RBG":
		return build[OrderRBG](reverse, timing, hw, cfg), nil
	case "GRB":
		return build[OrderGRB](reverse, timing, hw, cfg), nil
	case "GBR":
		return build[OrderGBR](reverse, timing, hw, cfg), nil
	case "BRG":
		return build[OrderBRG](reverse, timing, hw, cfg), nil
	case "BGR":
		return build[OrderBGR](reverse, timing, hw, cfg), nil
	}
	return nil, errors.Wrapf(ErrUnknownOrder, "%q", order)
}

func build[O Order, T Timing, H Hardware](reverse bool, timing T, hw H, cfg Config) LEDController {
	if reverse {
		return New[Reverse[O]](timing, hw, cfg)
	}
	return New[O](timing, hw, cfg)
}
