// ABOUTME: Synthetic audio fixtures for tests
// ABOUTME: Generates sine clips as decoded buffers and encoded WAV/AIFF bytes
package audiotest

import (
	"math"
	"testing"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/encode"
)

// Waveform returns the sample value for a frame and channel
type Waveform func(frame, channel int) float32

// Sine returns a sine waveform of the given frequency and amplitude
func Sine(sampleRate int, frequency, amplitude float64) Waveform {
	return func(frame, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
}

// Constant returns a waveform holding one value
func Constant(value float32) Waveform {
	return func(frame, channel int) float32 {
		return value
	}
}

// Samples renders frames of a waveform as interleaved samples
func Samples(frames, channels int, wave Waveform) []float32 {
	out := make([]float32, frames*channels)
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			out[f*channels+ch] = wave(f, ch)
		}
	}
	return out
}

// Decoded builds an in-memory clip, failing the test on error
func Decoded(t testing.TB, sampleRate, channels, frames int, wave Waveform) *audio.Decoded {
	t.Helper()

	d, err := audio.NewDecoded(Samples(frames, channels, wave), sampleRate, channels)
	if err != nil {
		t.Fatalf("building decoded clip: %v", err)
	}
	return d
}

// WAV encodes a clip as a 16-bit WAV file
func WAV(t testing.TB, sampleRate, channels, frames int, wave Waveform) []byte {
	t.Helper()

	enc, err := encode.NewWAV(16)
	if err != nil {
		t.Fatalf("creating wav encoder: %v", err)
	}
	data, err := enc.Encode(Decoded(t, sampleRate, channels, frames, wave))
	if err != nil {
		t.Fatalf("encoding wav: %v", err)
	}
	return data
}

// AIFF encodes a clip as a 16-bit AIFF file
func AIFF(t testing.TB, sampleRate, channels, frames int, wave Waveform) []byte {
	t.Helper()

	enc, err := encode.NewAIFF(16)
	if err != nil {
		t.Fatalf("creating aiff encoder: %v", err)
	}
	data, err := enc.Encode(Decoded(t, sampleRate, channels, frames, wave))
	if err != nil {
		t.Fatalf("encoding aiff: %v", err)
	}
	return data
}

// RMS returns the root-mean-square of a channel of interleaved samples
func RMS(samples []float32, channels, channel int) float64 {
	var sum float64
	var n int
	for i := channel; i < len(samples); i += channels {
		sum += float64(samples[i]) * float64(samples[i])
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// Goertzel returns the power of one frequency in a channel of interleaved samples
func Goertzel(samples []float32, channels, channel, sampleRate int, frequency float64) float64 {
	coeff := 2 * math.Cos(2*math.Pi*frequency/float64(sampleRate))
	var s1, s2 float64
	var n int
	for i := channel; i < len(samples); i += channels {
		s := float64(samples[i]) + coeff*s1 - s2
		s2 = s1
		s1 = s
		n++
	}
	if n == 0 {
		return 0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	return power / float64(n*n)
}
