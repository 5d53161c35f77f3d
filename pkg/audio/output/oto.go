// ABOUTME: Oto-based audio output implementation
// ABOUTME: Oto pulls float32 PCM through io.Reader, which drains the adapter
package output

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Oto output implementation using oto library
type Oto struct {
	otoCtx     *oto.Context
	player     *oto.Player
	filler     *byteFiller
	sampleRate int
	channels   int
	mu         sync.Mutex
}

// NewOto creates a new Oto output
func NewOto() Output {
	return &Oto{}
}

// Name returns the backend name
func (o *Oto) Name() string { return "oto" }

// Open initializes the output device.
// oto allows one context per process, so an Oto cannot be reopened after Close.
func (o *Oto) Open(sampleRate, channels, periodFrames int, src Source) error {
	if err := checkOpenArgs(sampleRate, channels, periodFrames, src); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		return ErrAlreadyOpen
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(periodFrames) * time.Second / time.Duration(sampleRate),
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.filler = newByteFiller(src, channels)

	// The player pulls from Read on oto's audio goroutine
	o.player = o.otoCtx.NewPlayer(o)
	o.player.Play()

	log.Printf("Audio output initialized: %dHz, %d channels, period %d frames (oto)", sampleRate, channels, periodFrames)

	return nil
}

// Read implements io.Reader for the oto player
func (o *Oto) Read(p []byte) (int, error) {
	return o.filler.fill(p), nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx == nil {
		return ErrNotOpen
	}
	if o.player != nil {
		o.player.Pause()
		o.player.Close()
		o.player = nil
	}
	o.otoCtx.Suspend()
	return nil
}
