// ABOUTME: Content error taxonomy
// ABOUTME: Typed resolution errors with kind sentinels for errors.Is
package content

import (
	"errors"
	"fmt"
)

// Kind classifies a resolution failure
type Kind int

const (
	KindNotFound Kind = iota
	KindFetch
	KindDecode
	KindSampleRateMismatch
)

// Kind sentinels; errors.Is(err, ErrNotFound) matches any *Error of that kind
var (
	ErrNotFound           = errors.New("content: not found")
	ErrFetch              = errors.New("content: fetch failed")
	ErrDecode             = errors.New("content: decode failed")
	ErrSampleRateMismatch = errors.New("content: sample rate mismatch")

	// ErrIntegrity is wrapped in a KindFetch error when bytes do not hash to their id
	ErrIntegrity = errors.New("content: digest does not match id")

	// ErrEmptyID is returned for an empty content identifier
	ErrEmptyID = errors.New("content: empty id")
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindFetch:
		return "fetch_error"
	case KindDecode:
		return "decode_error"
	case KindSampleRateMismatch:
		return "sample_rate_mismatch"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindFetch:
		return ErrFetch
	case KindDecode:
		return ErrDecode
	case KindSampleRateMismatch:
		return ErrSampleRateMismatch
	default:
		return nil
	}
}

// Error is a failed resolution of one content id
type Error struct {
	Kind Kind
	ID   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("content %s: %s", e.ID, e.Kind)
	}
	return fmt.Sprintf("content %s: %s: %v", e.ID, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of a content error, and false for anything else
func KindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}
