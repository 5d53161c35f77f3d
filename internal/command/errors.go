// ABOUTME: Command result codes
// ABOUTME: Maps engine, timeline and content errors to stable wire codes
package command

import (
	"errors"

	"github.com/Resonate-Protocol/resonate-timeline/internal/export"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/content"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

const (
	CodeInvalidArgument    = "invalid_argument"
	CodeInvalidTransition  = "invalid_transition"
	CodeRegionNotFound     = "region_not_found"
	CodeContentNotFound    = "content_not_found"
	CodeContentFetch       = "content_fetch_error"
	CodeContentDecode      = "content_decode_error"
	CodeSampleRateMismatch = "sample_rate_mismatch"
	CodeUnknownCommand     = "unknown_command"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

var (
	ErrUnknownCommand = errors.New("command: unknown command")
	ErrUnavailable    = errors.New("command: feature not configured")
	ErrInvalidFile    = errors.New("command: invalid export file name")
	ErrClosed         = errors.New("command: queue closed")
)

// CodeOf returns the wire code for err
func CodeOf(err error) string {
	if kind, ok := content.KindOf(err); ok {
		switch kind {
		case content.KindNotFound:
			return CodeContentNotFound
		case content.KindFetch:
			return CodeContentFetch
		case content.KindDecode:
			return CodeContentDecode
		case content.KindSampleRateMismatch:
			return CodeSampleRateMismatch
		}
	}

	switch {
	case errors.Is(err, timeline.ErrRegionNotFound):
		return CodeRegionNotFound
	case errors.Is(err, timeline.ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, timeline.ErrInvalidTempo),
		errors.Is(err, timeline.ErrInvalidBeat),
		errors.Is(err, timeline.ErrInvalidDuration),
		errors.Is(err, timeline.ErrUnknownBehavior),
		errors.Is(err, export.ErrInvalidRange),
		errors.Is(err, ErrInvalidFile):
		return CodeInvalidArgument
	case errors.Is(err, ErrUnknownCommand):
		return CodeUnknownCommand
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrClosed):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}

func failure(err error) Result {
	return Result{OK: false, Code: CodeOf(err), Error: err.Error()}
}
