// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes Ogg Opus files to float32 samples via libopusfile
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// libopusfile always decodes at 48kHz
	opusSampleRate = 48000

	// Max frame size: 120ms at 48kHz
	opusMaxFrame = 5760

	// OpusHead layout: magic(8) version(1) channels(1)
	opusHeadChannelOffset = 9
)

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// Decode converts Ogg Opus bytes to float32 samples
func (OpusDecoder) Decode(data []byte) (*audio.Decoded, error) {
	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open opus stream: %v", ErrMalformed, err)
	}
	defer stream.Close()

	pcm := make([]float32, opusMaxFrame*channels)
	var samples []float32
	for {
		n, err := stream.ReadFloat32(pcm)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: opus decode failed: %v", ErrMalformed, err)
		}
		if n == 0 {
			break
		}
		// n is samples per channel
		samples = append(samples, pcm[:n*channels]...)
	}

	return audio.NewDecoded(samples, opusSampleRate, channels)
}

// opusChannels reads the output channel count from the OpusHead packet
func opusChannels(data []byte) (int, error) {
	head := data
	if len(head) > oggProbeBytes {
		head = head[:oggProbeBytes]
	}

	idx := bytes.Index(head, []byte("OpusHead"))
	if idx < 0 || idx+opusHeadChannelOffset >= len(data) {
		return 0, fmt.Errorf("%w: missing OpusHead", ErrMalformed)
	}

	channels := int(data[idx+opusHeadChannelOffset])
	if channels != 1 && channels != 2 {
		return 0, fmt.Errorf("%w: opus with %d channels", ErrUnsupportedFormat, channels)
	}
	return channels, nil
}
