//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
)

// ErrPortAudioUnavailable is returned when built without the portaudio tag
var ErrPortAudioUnavailable = errors.New("output: portaudio support not compiled in (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() Output {
	return &PortAudio{}
}

// Name returns the backend name
func (p *PortAudio) Name() string { return "portaudio" }

// Open always fails in the stub
func (p *PortAudio) Open(sampleRate, channels, periodFrames int, src Source) error {
	return ErrPortAudioUnavailable
}

// Close is a no-op in the stub
func (p *PortAudio) Close() error {
	return nil
}
