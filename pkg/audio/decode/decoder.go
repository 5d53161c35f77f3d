// ABOUTME: Decoder interface, container sniffing and decoder registry
// ABOUTME: Dispatches encoded bytes to the matching container decoder
package decode

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
)

// Container names a self-describing audio file format
type Container string

const (
	Unknown Container = ""
	WAV     Container = "wav"
	AIFF    Container = "aiff"
	FLAC    Container = "flac"
	MP3     Container = "mp3"
	Vorbis  Container = "ogg/vorbis"
	Opus    Container = "ogg/opus"
)

// Decoder decodes one complete container into memory
type Decoder interface {
	// Decode converts a whole encoded file to interleaved float32 samples
	Decode(data []byte) (*audio.Decoded, error)
}

// oggProbeBytes is how far into an Ogg stream we look for the codec header
const oggProbeBytes = 512

// Detect identifies the container from its leading bytes
func Detect(data []byte) Container {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return WAV
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("FORM")) &&
		(bytes.Equal(data[8:12], []byte("AIFF")) || bytes.Equal(data[8:12], []byte("AIFC"))):
		return AIFF
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("fLaC")):
		return FLAC
	case len(data) >= 4 && bytes.Equal(data[0:4], []byte("OggS")):
		head := data
		if len(head) > oggProbeBytes {
			head = head[:oggProbeBytes]
		}
		if bytes.Contains(head, []byte("OpusHead")) {
			return Opus
		}
		if bytes.Contains(head, []byte("\x01vorbis")) {
			return Vorbis
		}
		return Unknown
	case len(data) >= 3 && bytes.Equal(data[0:3], []byte("ID3")):
		return MP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return MP3
	}
	return Unknown
}

// Registry maps containers to decoders
type Registry struct {
	codecs map[Container]Decoder
	mtx    sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[Container]Decoder),
	}
}

// DefaultRegistry returns a registry with every built-in decoder
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WAV, WAVDecoder{})
	r.Register(AIFF, AIFFDecoder{})
	r.Register(FLAC, FLACDecoder{})
	r.Register(MP3, MP3Decoder{})
	r.Register(Vorbis, VorbisDecoder{})
	r.Register(Opus, OpusDecoder{})
	return r
}

// Register installs or replaces the decoder for a container
func (r *Registry) Register(c Container, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[c] = d
}

// Get returns the decoder for a container
func (r *Registry) Get(c Container) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.codecs[c]
	return d, ok
}

// Decode sniffs the container and decodes it
func (r *Registry) Decode(data []byte) (decoded *audio.Decoded, err error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	c := Detect(data)
	if c == Unknown {
		return nil, fmt.Errorf("%w: unrecognised container", ErrUnsupportedFormat)
	}

	d, ok := r.Get(c)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder registered for %s", ErrUnsupportedFormat, c)
	}

	// Third-party decoders are not all hardened against hostile input.
	defer func() {
		if p := recover(); p != nil {
			decoded = nil
			err = fmt.Errorf("%w: %s decoder panicked: %v", ErrMalformed, c, p)
		}
	}()

	decoded, err = d.Decode(data)
	if err != nil {
		return nil, err
	}
	if decoded.Frames() == 0 {
		return nil, fmt.Errorf("%w: %s contains no audio frames", ErrMalformed, c)
	}
	return decoded, nil
}

// signedScale converts a signed integer sample of bits width to [-1, 1)
func signedScale(sample int32, bits int) float32 {
	if bits <= 0 || bits > 32 {
		bits = 16
	}
	return float32(float64(sample) / float64(int64(1)<<(bits-1)))
}
