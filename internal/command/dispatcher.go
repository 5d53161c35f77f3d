// ABOUTME: Command dispatcher and queue worker
// ABOUTME: Prepares commands off-queue, then applies them to the timeline in order
package command

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Resonate-Protocol/resonate-timeline/internal/export"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/encode"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

// queueSize bounds commands waiting for the worker
const queueSize = 64

// Resolver turns a content id into decoded audio; *content.Resolver implements it
type Resolver interface {
	Resolve(ctx context.Context, id string) (*audio.Decoded, error)
}

// StatsFunc gathers runtime statistics for stats/get
type StatsFunc func() Stats

// Config wires a dispatcher to the engine
type Config struct {
	Timeline   *timeline.Timeline
	Resolver   Resolver
	SampleRate int
	Stats      StatsFunc // optional
	ExportDir  string    // optional; export/bounce is unavailable without it
	Debug      bool
}

type request struct {
	cmd   Command
	reply chan Result
}

// Dispatcher executes commands against one timeline
type Dispatcher struct {
	config   Config
	requests chan request

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher; call Start before Submit
func NewDispatcher(config Config) *Dispatcher {
	return &Dispatcher{
		config:   config,
		requests: make(chan request, queueSize),
		stopChan: make(chan struct{}),
	}
}

// Start launches the worker goroutine
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case req := <-d.requests:
			req.reply <- d.apply(req.cmd)
		case <-d.stopChan:
			return
		}
	}
}

// Stop stops the worker; pending and later submissions fail with ErrClosed
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.wg.Wait()
}

// Submit prepares cmd, queues it and waits for its result
func (d *Dispatcher) Submit(ctx context.Context, cmd Command) Result {
	if cmd == nil {
		return failure(ErrUnknownCommand)
	}
	if d.config.Debug {
		log.Printf("[DEBUG] Command: %s %+v", cmd.Name(), cmd)
	}

	cmd, res, done := d.prepare(ctx, cmd)
	if done {
		return res
	}

	req := request{cmd: cmd, reply: make(chan Result, 1)}
	select {
	case d.requests <- req:
	case <-d.stopChan:
		return failure(ErrClosed)
	case <-ctx.Done():
		return failure(ctx.Err())
	}

	select {
	case res := <-req.reply:
		return res
	case <-d.stopChan:
		return failure(ErrClosed)
	case <-ctx.Done():
		// The command may still be applied; the caller just stops waiting.
		return failure(ctx.Err())
	}
}

// prepare runs the blocking part of a command in the caller's goroutine.
// done reports that the command is finished and res is final.
func (d *Dispatcher) prepare(ctx context.Context, cmd Command) (Command, Result, bool) {
	switch c := cmd.(type) {
	case *CreateRegion:
		if c == nil {
			return cmd, failure(ErrUnknownCommand), true
		}
		behavior, err := timeline.ParseBehavior(c.Behavior)
		if err != nil {
			return cmd, failure(err), true
		}
		if err := timeline.ValidateRegion(c.Position, c.Duration, behavior); err != nil {
			return cmd, failure(err), true
		}

		prepared := *c
		prepared.behavior = behavior
		if c.ContentID != "" {
			if d.config.Resolver == nil {
				return cmd, failure(fmt.Errorf("%w: no content store", ErrUnavailable)), true
			}
			clip, err := d.config.Resolver.Resolve(ctx, c.ContentID)
			if err != nil {
				log.Printf("Region create failed: %v", err)
				return cmd, failure(err), true
			}
			prepared.resolved = clip
		}
		return &prepared, Result{}, false

	case Bounce:
		return cmd, d.bounce(c), true
	}
	return cmd, Result{}, false
}

// apply mutates or reads the timeline; only the worker calls it
func (d *Dispatcher) apply(cmd Command) Result {
	tl := d.config.Timeline

	switch c := cmd.(type) {
	case Play:
		if err := tl.Play(); err != nil {
			return failure(err)
		}
		return d.status()

	case Pause:
		if err := tl.Pause(); err != nil {
			return failure(err)
		}
		return d.status()

	case Stop:
		tl.Stop()
		return d.status()

	case Seek:
		if err := tl.Seek(c.Beat); err != nil {
			return failure(err)
		}
		return d.status()

	case SetTempo:
		if err := tl.SetTempo(c.BPM); err != nil {
			return failure(err)
		}
		return d.status()

	case *CreateRegion:
		id, err := tl.AddRegion(timeline.Region{
			Position:  c.Position,
			Duration:  c.Duration,
			Behavior:  c.behavior,
			ContentID: c.ContentID,
			Audio:     c.resolved,
		})
		if err != nil {
			return failure(err)
		}
		log.Printf("Region created: %s at beat %.3f for %.3f beats (content %q)", id, c.Position, c.Duration, c.ContentID)
		return Result{OK: true, RegionID: id}

	case DeleteRegion:
		if err := tl.DeleteRegion(c.RegionID); err != nil {
			return failure(err)
		}
		return Result{OK: true, RegionID: c.RegionID}

	case MoveRegion:
		if err := tl.MoveRegion(c.RegionID, c.Position); err != nil {
			return failure(err)
		}
		return Result{OK: true, RegionID: c.RegionID}

	case ListRegions:
		return Result{OK: true, Regions: tl.Regions()}

	case GetStatus:
		return d.status()

	case GetStats:
		if d.config.Stats == nil {
			return failure(fmt.Errorf("%w: no statistics source", ErrUnavailable))
		}
		stats := d.config.Stats()
		return Result{OK: true, Stats: &stats}

	default:
		return failure(fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name()))
	}
}

func (d *Dispatcher) status() Result {
	st := d.config.Timeline.Status()
	return Result{OK: true, Status: &Status{
		State:    st.State.String(),
		Position: st.Position,
		Tempo:    st.Tempo,
	}}
}

func (d *Dispatcher) bounce(c Bounce) Result {
	if d.config.ExportDir == "" {
		return failure(fmt.Errorf("%w: no export directory", ErrUnavailable))
	}

	name := c.File
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return failure(fmt.Errorf("%w: %q", ErrInvalidFile, c.File))
	}
	if filepath.Ext(name) != ".wav" {
		name += ".wav"
	}

	enc, err := encode.NewWAV(16)
	if err != nil {
		return failure(err)
	}

	data, frames, err := export.Bounce(d.config.Timeline, d.config.SampleRate, c.From, c.To, enc)
	if err != nil {
		return failure(err)
	}

	if err := os.MkdirAll(d.config.ExportDir, 0o755); err != nil {
		return failure(fmt.Errorf("failed to create export directory: %w", err))
	}
	path := filepath.Join(d.config.ExportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return failure(fmt.Errorf("failed to write bounce: %w", err))
	}

	log.Printf("Bounced beats [%.3f, %.3f) to %s (%d frames)", c.From, c.To, path, frames)
	return Result{OK: true, Bounce: &BounceResult{Path: path, Frames: frames, Bytes: len(data)}}
}
