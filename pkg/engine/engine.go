// ABOUTME: Playback engine render cycle
// ABOUTME: Clears, mixes active regions, soft clips and advances the play-head
package engine

import (
	"errors"
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

// Channels is the fixed output channel count
const Channels = 2

const (
	// defaultActiveCapacity sizes the reused active-region slice
	defaultActiveCapacity = 64

	// frameEpsilon absorbs rounding in the beat-to-frame conversion of the anchor
	frameEpsilon = 1e-6
)

// ErrInvalidSampleRate is returned for a non-positive session rate
var ErrInvalidSampleRate = errors.New("engine: sample rate must be positive")

// Stats is a snapshot of render activity
type Stats struct {
	Cycles        uint64 `json:"cycles"`
	Frames        uint64 `json:"frames"`
	ClippedSample uint64 `json:"clipped_samples"`
	ActiveRegions int    `json:"active_regions"`
}

// Engine renders a timeline into interleaved stereo float32 blocks.
// Render must only be called from one goroutine at a time.
type Engine struct {
	tl         *timeline.Timeline
	sampleRate int

	// reused across cycles so Render does not allocate
	active []timeline.Active

	cycles  atomic.Uint64
	frames  atomic.Uint64
	clipped atomic.Uint64
	lastAct atomic.Int64
}

// New creates an engine for tl at the session sample rate
func New(tl *timeline.Timeline, sampleRate int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	return &Engine{
		tl:         tl,
		sampleRate: sampleRate,
		active:     make([]timeline.Active, 0, defaultActiveCapacity),
	}, nil
}

// SampleRate returns the session sample rate
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Timeline returns the timeline being rendered
func (e *Engine) Timeline() *timeline.Timeline {
	return e.tl
}

// Render fills dst with the next len(dst)/2 stereo frames and returns the
// frame count. A transport that is not playing renders silence and leaves the
// play-head alone.
func (e *Engine) Render(dst []float32) int {
	n := len(dst) / Channels
	dst = dst[:n*Channels]

	clear(dst)

	cur, active := e.tl.Snapshot(n, e.sampleRate, e.active)
	e.active = active

	e.cycles.Add(1)
	e.frames.Add(uint64(n))
	e.lastAct.Store(int64(len(active)))

	if cur.State != timeline.Playing || n == 0 {
		return n
	}

	framesPerBeat := timeline.BeatsToFrames(1, e.sampleRate, cur.Tempo)
	for i := range active {
		switch active[i].Behavior {
		case timeline.PlayContent:
			e.mixContent(dst, n, &cur, framesPerBeat, &active[i])
		}
	}

	if c := softClipBlock(dst); c > 0 {
		e.clipped.Add(uint64(c))
	}

	// Drop the audio references so a deleted region's buffer can be freed.
	for i := range active {
		active[i].Audio = nil
	}

	e.tl.Advance(cur, n)
	return n
}

// mixContent sums one region's audio into dst. Output frame i maps to source
// frame floor((anchor-position)*framesPerBeat) + elapsed + i; frames before the
// region, after its duration or past the decoded audio contribute nothing.
func (e *Engine) mixContent(dst []float32, n int, cur *timeline.Cursor, framesPerBeat float64, a *timeline.Active) {
	clip := a.Audio
	if clip == nil {
		return
	}

	base := int(math.Floor((cur.Anchor-a.Position)*framesPerBeat+frameEpsilon)) + int(cur.Elapsed)

	limit := int(math.Ceil(a.Duration*framesPerBeat - frameEpsilon))
	if frames := clip.Frames(); frames < limit {
		limit = frames
	}

	start := 0
	if base < 0 {
		start = -base
	}
	end := n
	if limit-base < end {
		end = limit - base
	}

	for i := start; i < end; i++ {
		l, r := clip.Frame(base + i)
		dst[i*Channels] += l
		dst[i*Channels+1] += r
	}
}

// Stats returns a snapshot of render counters
func (e *Engine) Stats() Stats {
	return Stats{
		Cycles:        e.cycles.Load(),
		Frames:        e.frames.Load(),
		ClippedSample: e.clipped.Load(),
		ActiveRegions: int(e.lastAct.Load()),
	}
}
