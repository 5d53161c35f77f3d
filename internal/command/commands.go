// ABOUTME: Typed command vocabulary for the timeline engine
// ABOUTME: One struct per inbound command plus the shared Result envelope
package command

import (
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/content"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/engine"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

// Command names, also used as wire message types
const (
	NamePlay         = "transport/play"
	NamePause        = "transport/pause"
	NameStop         = "transport/stop"
	NameSeek         = "transport/seek"
	NameSetTempo     = "transport/set_tempo"
	NameCreateRegion = "region/create"
	NameDeleteRegion = "region/delete"
	NameMoveRegion   = "region/move"
	NameListRegions  = "region/list"
	NameGetStatus    = "status/get"
	NameGetStats     = "stats/get"
	NameBounce       = "export/bounce"
)

// Command is one inbound control command
type Command interface {
	Name() string
}

type Play struct{}
type Pause struct{}
type Stop struct{}

type Seek struct {
	Beat float64 `json:"beat"`
}

type SetTempo struct {
	BPM float64 `json:"bpm"`
}

// CreateRegion schedules a region. An empty ContentID creates a silent
// placeholder region.
type CreateRegion struct {
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
	Behavior  string  `json:"behavior"`
	ContentID string  `json:"content_id,omitempty"`

	// filled in by the dispatcher before the timeline is touched
	resolved *audio.Decoded
	behavior timeline.Behavior
}

type DeleteRegion struct {
	RegionID string `json:"region_id"`
}

type MoveRegion struct {
	RegionID string  `json:"region_id"`
	Position float64 `json:"position"`
}

type ListRegions struct{}
type GetStatus struct{}
type GetStats struct{}

// Bounce renders [From, To) beats to a WAV file named File in the export directory
type Bounce struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
	File string  `json:"file"`
}

func (Play) Name() string          { return NamePlay }
func (Pause) Name() string         { return NamePause }
func (Stop) Name() string          { return NameStop }
func (Seek) Name() string          { return NameSeek }
func (SetTempo) Name() string      { return NameSetTempo }
func (*CreateRegion) Name() string { return NameCreateRegion }
func (DeleteRegion) Name() string  { return NameDeleteRegion }
func (MoveRegion) Name() string    { return NameMoveRegion }
func (ListRegions) Name() string   { return NameListRegions }
func (GetStatus) Name() string     { return NameGetStatus }
func (GetStats) Name() string      { return NameGetStats }
func (Bounce) Name() string        { return NameBounce }

// Status is the get_status reply
type Status struct {
	State    string  `json:"state"`
	Position float64 `json:"position"`
	Tempo    float64 `json:"tempo"`
}

// Stats is the get_stats reply
type Stats struct {
	Output       output.Stats       `json:"output"`
	Engine       engine.Stats       `json:"engine"`
	Driver       engine.DriverStats `json:"driver"`
	RingOverflow uint64             `json:"ring_overflow"`
	Content      content.Stats      `json:"content"`
}

// BounceResult describes a written bounce
type BounceResult struct {
	Path   string `json:"path"`
	Frames int    `json:"frames"`
	Bytes  int    `json:"bytes"`
}

// Result is the reply to any command
type Result struct {
	OK       bool            `json:"ok"`
	Code     string          `json:"code,omitempty"`
	Error    string          `json:"error,omitempty"`
	RegionID string          `json:"region_id,omitempty"`
	Status   *Status         `json:"status,omitempty"`
	Regions  []timeline.Info `json:"regions,omitempty"`
	Stats    *Stats          `json:"stats,omitempty"`
	Bounce   *BounceResult   `json:"bounce,omitempty"`
}
