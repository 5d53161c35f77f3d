// ABOUTME: AIFF audio decoder
// ABOUTME: Decodes AIFF/AIFC integer PCM using go-audio/aiff
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
)

// aiffChunkSamples is the read size used while draining the PCM chunk
const aiffChunkSamples = 4096

// AIFFDecoder decodes AIFF files
type AIFFDecoder struct{}

// Decode converts AIFF bytes to float32 samples
func (AIFFDecoder) Decode(data []byte) (*audio.Decoded, error) {
	dec := aiff.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid AIFF header", ErrMalformed)
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: AIFF missing COMM chunk", ErrMalformed)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: AIFF bit depth %d", ErrUnsupportedFormat, bitDepth)
	}

	intBuf := &goaudio.IntBuffer{
		Data:   make([]int, aiffChunkSamples*format.NumChannels),
		Format: format,
	}

	var samples []float32
	for {
		n, err := dec.PCMBuffer(intBuf)
		for i := 0; i < n; i++ {
			samples = append(samples, signedScale(int32(intBuf.Data[i]), bitDepth))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: reading AIFF data: %v", ErrMalformed, err)
		}
		if n == 0 {
			break
		}
	}

	n := len(samples) - len(samples)%format.NumChannels
	return audio.NewDecoded(samples[:n], format.SampleRate, format.NumChannels)
}
