// ABOUTME: Timeline error values
// ABOUTME: Sentinel errors for invalid commands; none of them change state
package timeline

import "errors"

var (
	ErrRegionNotFound    = errors.New("timeline: region not found")
	ErrInvalidTransition = errors.New("timeline: invalid transport transition")
	ErrInvalidTempo      = errors.New("timeline: tempo must be finite and within range")
	ErrInvalidBeat       = errors.New("timeline: beat must be finite and non-negative")
	ErrInvalidDuration   = errors.New("timeline: duration must be finite and positive")
	ErrUnknownBehavior   = errors.New("timeline: unknown region behavior")
)
