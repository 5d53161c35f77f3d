// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes Ogg Vorbis to float32 samples via jfreymuth/oggvorbis
package decode

import (
	"bytes"
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// VorbisDecoder decodes Ogg Vorbis audio
type VorbisDecoder struct{}

// Decode converts Ogg Vorbis bytes to float32 samples
func (VorbisDecoder) Decode(data []byte) (*audio.Decoded, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: vorbis decode failed: %v", ErrMalformed, err)
	}
	if format == nil || format.Channels <= 0 {
		return nil, fmt.Errorf("%w: vorbis stream has no channels", ErrMalformed)
	}

	n := len(samples) - len(samples)%format.Channels
	return audio.NewDecoded(samples[:n], format.SampleRate, format.Channels)
}
