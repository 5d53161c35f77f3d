// ABOUTME: Timeline state machine
// ABOUTME: Transport transitions, region CRUD and render-side snapshots
package timeline

import (
	"fmt"
	"math"
	"sync"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/google/uuid"
)

const (
	MinTempo = 1.0
	MaxTempo = 999.0
)

// State is the transport state
type State uint8

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Status is the externally visible transport status
type Status struct {
	State    State
	Position float64
	Tempo    float64
}

// Active is one region as seen by a single render cycle
type Active struct {
	Position float64
	Duration float64
	Behavior Behavior
	Audio    *audio.Decoded
}

// Cursor captures the transport at the start of a render cycle.
// The play-head is Anchor beats plus Elapsed whole frames at Tempo.
type Cursor struct {
	State   State
	Head    float64
	Tempo   float64
	Anchor  float64
	Elapsed int64
	gen     uint64
	epoch   uint64
}

// Timeline is the process-wide region and transport model
type Timeline struct {
	mu    sync.Mutex
	state State
	tempo float64

	// play-head: anchor beats plus elapsed frames rendered at rate since then
	anchor  float64
	elapsed int64
	rate    int

	gen     uint64 // bumped on every play-head jump
	epoch   uint64 // bumped whenever anchor absorbs elapsed
	regions []*Region
}

// New creates a stopped timeline at beat 0
func New(tempo float64) (*Timeline, error) {
	if !ValidTempo(tempo) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTempo, tempo)
	}
	return &Timeline{
		state: Stopped,
		tempo: tempo,
	}, nil
}

// ValidTempo reports whether bpm is an accepted tempo
func ValidTempo(bpm float64) bool {
	return !math.IsNaN(bpm) && bpm >= MinTempo && bpm <= MaxTempo
}

func validBeat(beat float64) bool {
	return !math.IsNaN(beat) && !math.IsInf(beat, 0) && beat >= 0
}

// Play starts or resumes playback. Playing again is a no-op.
func (t *Timeline) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = Playing
	return nil
}

// Pause pauses playback; only valid while playing
func (t *Timeline) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Playing {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, t.state)
	}
	t.state = Paused
	return nil
}

// Stop stops playback from any state. The play-head stays where it is;
// callers that want to rewind seek explicitly.
func (t *Timeline) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state = Stopped
}

// Seek moves the play-head directly without changing transport state
func (t *Timeline) Seek(beat float64) error {
	if !validBeat(beat) {
		return fmt.Errorf("%w: %v", ErrInvalidBeat, beat)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.anchor = beat
	t.elapsed = 0
	t.gen++
	return nil
}

// SetTempo changes the tempo from the next render cycle on
func (t *Timeline) SetTempo(bpm float64) error {
	if !ValidTempo(bpm) {
		return fmt.Errorf("%w: %v", ErrInvalidTempo, bpm)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.fold()
	t.tempo = bpm
	return nil
}

// Status returns the current transport status
func (t *Timeline) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Status{State: t.state, Position: t.head(), Tempo: t.tempo}
}

// head returns the play-head in beats; callers hold mu
func (t *Timeline) head() float64 {
	if t.elapsed == 0 || t.rate <= 0 {
		return t.anchor
	}
	return t.anchor + float64(t.elapsed)*t.tempo/(60*float64(t.rate))
}

// fold moves the elapsed frames into the anchor before the frame rate or
// tempo they were counted at changes
func (t *Timeline) fold() {
	t.anchor = t.head()
	t.elapsed = 0
	t.epoch++
}

// ValidateRegion checks region parameters without touching the timeline
func ValidateRegion(position, duration float64, behavior Behavior) error {
	if !validBeat(position) {
		return fmt.Errorf("%w: position %v", ErrInvalidBeat, position)
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, duration)
	}
	if !behavior.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownBehavior, behavior)
	}
	return nil
}

// AddRegion validates r, assigns it a fresh id and schedules it.
// Content must already be resolved by the caller.
func (t *Timeline) AddRegion(r Region) (string, error) {
	if err := ValidateRegion(r.Position, r.Duration, r.Behavior); err != nil {
		return "", err
	}

	r.ID = uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.regions = append(t.regions, &r)
	return r.ID, nil
}

func (t *Timeline) find(id string) int {
	for i, r := range t.regions {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// DeleteRegion removes a region
func (t *Timeline) DeleteRegion(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRegionNotFound, id)
	}

	copy(t.regions[i:], t.regions[i+1:])
	t.regions[len(t.regions)-1] = nil
	t.regions = t.regions[:len(t.regions)-1]
	return nil
}

// MoveRegion changes a region's start position
func (t *Timeline) MoveRegion(id string, position float64) error {
	if !validBeat(position) {
		return fmt.Errorf("%w: position %v", ErrInvalidBeat, position)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRegionNotFound, id)
	}
	t.regions[i].Position = position
	return nil
}

// Region returns a view of one region
func (t *Timeline) Region(id string) (Info, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := t.find(id)
	if i < 0 {
		return Info{}, false
	}
	return t.regions[i].info(), true
}

// Regions lists all regions in creation order
func (t *Timeline) Regions() []Info {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Info, len(t.regions))
	for i, r := range t.regions {
		out[i] = r.info()
	}
	return out
}

// Clear removes every region and returns how many were removed
func (t *Timeline) Clear() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.regions)
	for i := range t.regions {
		t.regions[i] = nil
	}
	t.regions = t.regions[:0]
	return n
}

// Snapshot captures the transport and appends the regions overlapping the
// next frames of output to dst[:0]. It does not allocate when dst has room.
func (t *Timeline) Snapshot(frames, sampleRate int, dst []Active) (Cursor, []Active) {
	dst = dst[:0]

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rate != sampleRate && sampleRate > 0 {
		t.fold()
		t.rate = sampleRate
	}

	head := t.head()
	cur := Cursor{
		State:   t.state,
		Head:    head,
		Tempo:   t.tempo,
		Anchor:  t.anchor,
		Elapsed: t.elapsed,
		gen:     t.gen,
		epoch:   t.epoch,
	}
	if t.state != Playing || frames <= 0 || sampleRate <= 0 {
		return cur, dst
	}

	end := head + FramesToBeats(frames, sampleRate, t.tempo)
	for _, r := range t.regions {
		if r.Overlaps(head, end) {
			dst = append(dst, Active{Position: r.Position, Duration: r.Duration, Behavior: r.Behavior, Audio: r.Audio})
		}
	}
	return cur, dst
}

// Advance moves the play-head forward by the frames a cycle rendered from cur.
// It does nothing if playback stopped or the play-head jumped since the
// snapshot, so a seek is never overwritten by an in-flight cycle.
func (t *Timeline) Advance(cur Cursor, frames int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gen != cur.gen || t.state != Playing || frames <= 0 {
		return false
	}
	if t.epoch != cur.epoch {
		// The tempo changed mid-cycle; the block was rendered at cur.Tempo.
		t.anchor += FramesToBeats(frames, t.rate, cur.Tempo)
		return true
	}
	t.elapsed += int64(frames)
	return true
}

// FramesToBeats converts a frame count to beats at tempo
func FramesToBeats(frames, sampleRate int, tempo float64) float64 {
	return float64(frames) * tempo / (60 * float64(sampleRate))
}

// BeatsToFrames converts beats to a fractional frame count at tempo
func BeatsToFrames(beats float64, sampleRate int, tempo float64) float64 {
	return beats * 60 * float64(sampleRate) / tempo
}

// Clone returns an independent timeline with copies of every region.
// Decoded audio is shared, not copied.
func (t *Timeline) Clone() *Timeline {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := &Timeline{
		state:   t.state,
		tempo:   t.tempo,
		anchor:  t.anchor,
		elapsed: t.elapsed,
		rate:    t.rate,
		regions: make([]*Region, len(t.regions)),
	}
	for i, r := range t.regions {
		cp := *r
		c.regions[i] = &cp
	}
	return c
}
