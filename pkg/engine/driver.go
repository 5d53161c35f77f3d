// ABOUTME: Render driver goroutine
// ABOUTME: Keeps the output ring topped up with engine blocks on a fixed cadence
package engine

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/ring"
)

var (
	ErrInvalidBlock    = errors.New("engine: block size must be positive and fit in the ring")
	ErrInvalidInterval = errors.New("engine: render interval must be positive")
	ErrChannelMismatch = errors.New("engine: ring must carry stereo frames")
)

// DriverStats is a snapshot of driver activity
type DriverStats struct {
	Ticks   uint64 `json:"ticks"`
	Blocks  uint64 `json:"blocks"`
	Dropped uint64 `json:"dropped_frames"`
}

// Driver renders blocks into the output ring whenever there is room
type Driver struct {
	engine      *Engine
	ring        *ring.Buffer
	interval    time.Duration
	blockFrames int
	block       []float32
	debug       bool

	ticks   atomic.Uint64
	blocks  atomic.Uint64
	dropped atomic.Uint64

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewDriver creates a driver that renders blockFrames at a time every interval
func NewDriver(e *Engine, rb *ring.Buffer, interval time.Duration, blockFrames int) (*Driver, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if rb.Channels() != Channels {
		return nil, ErrChannelMismatch
	}
	if blockFrames <= 0 || blockFrames > rb.Capacity() {
		return nil, ErrInvalidBlock
	}

	return &Driver{
		engine:      e,
		ring:        rb,
		interval:    interval,
		blockFrames: blockFrames,
		block:       make([]float32, blockFrames*Channels),
		stopChan:    make(chan struct{}),
	}, nil
}

// SetDebug enables periodic debug logging
func (d *Driver) SetDebug(debug bool) {
	d.debug = debug
}

// Pump renders blocks until the ring has no room for another one and
// returns the number of frames written. Only one goroutine may pump.
func (d *Driver) Pump() int {
	total := 0
	for d.ring.Free() >= d.blockFrames {
		n := d.engine.Render(d.block)
		written := d.ring.Write(d.block[:n*Channels])
		if written < n {
			d.dropped.Add(uint64(n - written))
		}
		d.blocks.Add(1)
		total += written
	}
	return total
}

// Start primes the ring and launches the render goroutine
func (d *Driver) Start() {
	if !d.running.CompareAndSwap(false, true) {
		return
	}

	d.Pump()

	d.wg.Add(1)
	go d.run()
}

func (d *Driver) run() {
	defer d.wg.Done()

	log.Printf("Render driver starting (block=%d frames, interval=%v)", d.blockFrames, d.interval)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ticks := d.ticks.Add(1)
			d.Pump()

			if d.debug && ticks%1000 == 0 {
				st := d.engine.Timeline().Status()
				log.Printf("[DEBUG] Render driver: ticks=%d blocks=%d ring=%d/%d state=%s head=%.3f",
					ticks, d.blocks.Load(), d.ring.Available(), d.ring.Capacity(), st.State, st.Position)
			}
		case <-d.stopChan:
			log.Printf("Render driver stopping")
			return
		}
	}
}

// Stop stops the render goroutine and waits for it to exit
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.wg.Wait()
}

// Stats returns a snapshot of driver counters
func (d *Driver) Stats() DriverStats {
	return DriverStats{
		Ticks:   d.ticks.Load(),
		Blocks:  d.blocks.Load(),
		Dropped: d.dropped.Load(),
	}
}
