// ABOUTME: AIFF encoder
// ABOUTME: Writes integer PCM AIFF files via go-audio/aiff
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

// AIFFEncoder encodes audio as integer PCM AIFF
type AIFFEncoder struct {
	bitDepth int
}

// NewAIFF creates a new AIFF encoder
func NewAIFF(bitDepth int) (*AIFFEncoder, error) {
	if err := checkBitDepth(bitDepth); err != nil {
		return nil, err
	}
	return &AIFFEncoder{bitDepth: bitDepth}, nil
}

// Encode writes d as an AIFF file
func (e *AIFFEncoder) Encode(d *audio.Decoded) ([]byte, error) {
	if d == nil {
		return nil, audio.ErrEmptyFormat
	}

	out := &Buffer{}
	enc := aiff.NewEncoder(out, d.SampleRate(), e.bitDepth, d.Channels())

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: d.Channels(),
			SampleRate:  d.SampleRate(),
		},
		Data:           quantise(d.Samples(), e.bitDepth),
		SourceBitDepth: e.bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("aiff write failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("aiff close failed: %w", err)
	}
	return out.Bytes(), nil
}
