// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE integer PCM using go-audio/wav
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/go-audio/wav"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes integer PCM WAV files
type WAVDecoder struct{}

// Decode converts WAV bytes to float32 samples
func (WAVDecoder) Decode(data []byte) (*audio.Decoded, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV header", ErrMalformed)
	}

	format := int(dec.WavAudioFormat)
	if format == wavFormatExtensible {
		format = wavSubFormat(data)
	}
	if format != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV encoding %d (supported: integer PCM)", ErrUnsupportedFormat, format)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: WAV bit depth %d", ErrUnsupportedFormat, bitDepth)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading WAV data: %v", ErrMalformed, err)
	}

	channels := int(dec.NumChans)
	if channels <= 0 {
		return nil, fmt.Errorf("%w: WAV declares %d channels", ErrMalformed, channels)
	}

	// Drop a trailing partial frame rather than reject the file.
	n := len(buf.Data) - len(buf.Data)%channels
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = audio.FloatFromInt(buf.Data[i], bitDepth)
	}

	return audio.NewDecoded(samples, int(dec.SampleRate), channels)
}

// wavSubFormat returns the format code carried in the SubFormat GUID of a
// WAVE_FORMAT_EXTENSIBLE fmt chunk, or -1 when there is none. go-audio/wav
// skips the extension so the chunk is read here.
func wavSubFormat(data []byte) int {
	if len(data) < 12 {
		return -1
	}
	for pos := 12; pos+8 <= len(data); {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			return -1
		}
		if id == "fmt " {
			if size < 40 {
				return -1
			}
			return int(binary.LittleEndian.Uint16(data[body+24 : body+26]))
		}
		pos = body + size + size%2
	}
	return -1
}
