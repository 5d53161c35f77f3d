// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded buffers and sample conversions
package audio

import (
	"errors"
	"fmt"
)

const (
	// 16-bit audio range constants
	Max16Bit = 32767
	Min16Bit = -32768
)

// ErrEmptyFormat is returned when a buffer is built with a zero rate or channel count
var ErrEmptyFormat = errors.New("audio: sample rate and channels must be positive")

// Format describes a PCM stream format
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// String returns a compact description like "48000Hz/2ch/16bit"
func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// Decoded is a fully decoded clip held in memory.
//
// A Decoded is never mutated after construction, so a single pointer can be
// handed to any number of regions and render cycles at once. It lives until the
// last holder drops it.
type Decoded struct {
	samples    []float32 // interleaved, [-1, 1]
	sampleRate int
	channels   int
}

// NewDecoded wraps interleaved samples. The slice is owned by the Decoded
// afterwards; callers must not write to it.
func NewDecoded(samples []float32, sampleRate, channels int) (*Decoded, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrEmptyFormat
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("audio: %d samples is not a multiple of %d channels", len(samples), channels)
	}
	return &Decoded{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// SampleRate returns the sample rate in Hz
func (d *Decoded) SampleRate() int { return d.sampleRate }

// Channels returns the number of interleaved channels
func (d *Decoded) Channels() int { return d.channels }

// Frames returns the number of frames (samples per channel)
func (d *Decoded) Frames() int { return len(d.samples) / d.channels }

// Samples exposes the interleaved samples read-only.
func (d *Decoded) Samples() []float32 { return d.samples }

// Frame returns the stereo pair for frame i. Mono is duplicated to both sides
// and anything wider than stereo contributes its first two channels.
// Out-of-range frames are silent.
func (d *Decoded) Frame(i int) (left, right float32) {
	if i < 0 || i >= d.Frames() {
		return 0, 0
	}
	base := i * d.channels
	if d.channels == 1 {
		s := d.samples[base]
		return s, s
	}
	return d.samples[base], d.samples[base+1]
}

// Format returns the format of the decoded buffer (always 32-bit float)
func (d *Decoded) Format() Format {
	return Format{SampleRate: d.sampleRate, Channels: d.channels, BitDepth: 32}
}

// FloatFromInt16 converts an int16 sample to float32 in [-1, 1)
func FloatFromInt16(sample int16) float32 {
	return float32(sample) / 32768.0
}

// FloatToInt16 converts a float32 sample to int16, clamping out-of-range input
func FloatToInt16(sample float32) int16 {
	v := sample * 32768.0
	if v > Max16Bit {
		return Max16Bit
	}
	if v < Min16Bit {
		return Min16Bit
	}
	return int16(v)
}

// FloatFromInt converts a signed integer sample of the given bit depth to float32.
// 8-bit samples are unsigned (offset 128) as stored in WAV files.
func FloatFromInt(sample int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(sample-128) / 128.0
	case 16:
		return float32(sample) / 32768.0
	case 24:
		return float32(sample) / 8388608.0
	case 32:
		return float32(float64(sample) / 2147483648.0)
	default:
		return float32(sample) / 32768.0
	}
}
