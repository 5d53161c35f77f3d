// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC frames to float32 samples via mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// Decode converts FLAC bytes to float32 samples
func (FLACDecoder) Decode(data []byte) (*audio.Decoded, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode FLAC: %v", ErrMalformed, err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels <= 0 {
		return nil, fmt.Errorf("%w: FLAC declares %d channels", ErrMalformed, channels)
	}

	var samples []float32
	if info.NSamples > 0 {
		samples = make([]float32, 0, int(info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: FLAC frame: %v", ErrMalformed, err)
		}

		if len(frame.Subframes) < channels {
			return nil, fmt.Errorf("%w: FLAC frame has %d subframes, want %d", ErrMalformed, len(frame.Subframes), channels)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, signedScale(frame.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	return audio.NewDecoded(samples, int(info.SampleRate), channels)
}
