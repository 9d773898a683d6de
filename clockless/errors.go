package clockless

import "github.com/pkg/errors"

// Configuration errors. Nothing on the transmission path returns an error.
var (
	ErrInvalidTiming = errors.New("clockless: invalid timing")
	ErrCycleRange    = errors.New("clockless: bit period out of counter range")
	ErrUnknownOrder  = errors.New("clockless: unknown color order")
	ErrUnknownChip   = errors.New("clockless: unknown chipset")

	maskAny = errors.WithStack
)
