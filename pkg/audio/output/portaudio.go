//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: PortAudio's float32 callback drains the adapter with no conversion
package output

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio output implementation
type PortAudio struct {
	stream *portaudio.Stream
	mu     sync.Mutex
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string { return "portaudio" }

// Open initializes PortAudio
func (p *PortAudio) Open(sampleRate, channels, periodFrames int, src Source) error {
	if err := checkOpenArgs(sampleRate, channels, periodFrames, src); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return ErrAlreadyOpen
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), periodFrames, func(out []float32) {
		src.Fill(out)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	log.Printf("Audio output initialized: %dHz, %d channels, period %d frames (portaudio)", sampleRate, channels, periodFrames)
	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotOpen
	}
	if err := p.stream.Stop(); err != nil {
		return err
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	p.stream = nil
	return portaudio.Terminate()
}
