// ABOUTME: Region and behavior types
// ABOUTME: A region schedules one behavior over a span of beats
package timeline

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
)

// Behavior is the closed set of things a region can do while rendering
type Behavior uint8

const (
	// PlayContent plays the region's decoded audio from its start
	PlayContent Behavior = iota + 1
)

func (b Behavior) String() string {
	switch b {
	case PlayContent:
		return "play_content"
	default:
		return fmt.Sprintf("behavior(%d)", uint8(b))
	}
}

// Valid reports whether b is a known behavior
func (b Behavior) Valid() bool {
	return b == PlayContent
}

// ParseBehavior parses the wire name of a behavior
func ParseBehavior(s string) (Behavior, error) {
	switch s {
	case "play_content", "PlayContent":
		return PlayContent, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBehavior, s)
	}
}

// Region is a scheduled playback entity.
// Audio is nil when the region has no content or it is not resolved; such a
// region renders as silence.
type Region struct {
	ID        string
	Position  float64 // start, beats
	Duration  float64 // beats
	Behavior  Behavior
	ContentID string
	Audio     *audio.Decoded
}

// End returns the first beat after the region
func (r *Region) End() float64 {
	return r.Position + r.Duration
}

// Overlaps reports whether [Position, End) intersects [from, to)
func (r *Region) Overlaps(from, to float64) bool {
	return r.Position < to && from < r.End()
}

// Info is a read-only view of a region for listings
type Info struct {
	ID        string  `json:"id"`
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
	Behavior  string  `json:"behavior"`
	ContentID string  `json:"content_id,omitempty"`
	Resolved  bool    `json:"resolved"`
	Frames    int     `json:"frames,omitempty"`
}

func (r *Region) info() Info {
	i := Info{
		ID:        r.ID,
		Position:  r.Position,
		Duration:  r.Duration,
		Behavior:  r.Behavior.String(),
		ContentID: r.ContentID,
		Resolved:  r.Audio != nil,
	}
	if r.Audio != nil {
		i.Frames = r.Audio.Frames()
	}
	return i
}
