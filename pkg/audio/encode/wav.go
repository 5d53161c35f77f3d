// ABOUTME: WAV encoder
// ABOUTME: Writes integer PCM WAV files via go-audio/wav
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag
const wavFormatPCM = 1

// WAVEncoder encodes audio as integer PCM WAV
type WAVEncoder struct {
	bitDepth int
}

// NewWAV creates a new WAV encoder
func NewWAV(bitDepth int) (*WAVEncoder, error) {
	if err := checkBitDepth(bitDepth); err != nil {
		return nil, err
	}
	return &WAVEncoder{bitDepth: bitDepth}, nil
}

// Encode writes d as a WAV file
func (e *WAVEncoder) Encode(d *audio.Decoded) ([]byte, error) {
	if d == nil {
		return nil, audio.ErrEmptyFormat
	}

	out := &Buffer{}
	enc := wav.NewEncoder(out, d.SampleRate(), e.bitDepth, d.Channels(), wavFormatPCM)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: d.Channels(),
			SampleRate:  d.SampleRate(),
		},
		Data:           quantise(d.Samples(), e.bitDepth),
		SourceBitDepth: e.bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("wav write failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav close failed: %w", err)
	}
	return out.Bytes(), nil
}
