// ABOUTME: Decoder error values
// ABOUTME: Sentinel errors shared by all container decoders
package decode

import "errors"

var (
	// ErrUnsupportedFormat is returned for containers or encodings we do not decode
	ErrUnsupportedFormat = errors.New("decode: unsupported audio format")

	// ErrMalformed is returned when a recognised container cannot be parsed
	ErrMalformed = errors.New("decode: malformed audio data")
)
