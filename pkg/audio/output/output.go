// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for pull-based playback backends
package output

import (
	"errors"
	"fmt"
)

// maxPeriodFrames bounds the scratch buffers backends preallocate
const maxPeriodFrames = 8192

var (
	ErrNotOpen        = errors.New("output: not open")
	ErrAlreadyOpen    = errors.New("output: already open")
	ErrUnknownBackend = errors.New("output: unknown backend")
)

// Source is what a backend pulls samples from; *Adapter implements it
type Source interface {
	// Fill writes interleaved float32 frames into dst and never blocks
	Fill(dst []float32) int
}

// Output represents an audio output device that pulls from a Source
type Output interface {
	// Open initializes the device and starts pulling from src
	Open(sampleRate, channels, periodFrames int, src Source) error

	// Close stops the device and releases resources
	Close() error

	// Name returns the backend name
	Name() string
}

// Backends lists the backend names accepted by New
func Backends() []string {
	return []string{"oto", "malgo", "portaudio", "null"}
}

// New creates a backend by name
func New(backend string) (Output, error) {
	switch backend {
	case "oto":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(), nil
	case "portaudio":
		return NewPortAudio(), nil
	case "null":
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func checkOpenArgs(sampleRate, channels, periodFrames int, src Source) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("invalid format: %dHz %dch", sampleRate, channels)
	}
	if periodFrames <= 0 || periodFrames > maxPeriodFrames {
		return fmt.Errorf("invalid period: %d frames (max %d)", periodFrames, maxPeriodFrames)
	}
	if src == nil {
		return fmt.Errorf("nil source")
	}
	return nil
}
