// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MPEG-1/2 layer III to float32 samples via go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// Decode converts MP3 bytes to float32 samples
func (MP3Decoder) Decode(data []byte) (*audio.Decoded, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create mp3 decoder: %v", ErrMalformed, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3 decode error: %v", ErrMalformed, err)
	}

	// Convert bytes to int16 then to float32, whole frames only
	numSamples := len(pcm) / 2
	numSamples -= numSamples % mp3Channels
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = audio.FloatFromInt16(sample16)
	}

	return audio.NewDecoded(samples, dec.SampleRate(), mp3Channels)
}
