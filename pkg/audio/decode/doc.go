// ABOUTME: Audio decoder package for self-describing containers
// ABOUTME: Provides container sniffing, a Decoder registry and per-format decoders
// Package decode turns complete encoded audio files into audio.Decoded buffers.
//
// Supports: WAV (PCM 8/16/24/32-bit), AIFF, FLAC, MP3, Ogg Vorbis, Ogg Opus
//
// The container is detected from its leading magic bytes, never from a file
// name. Unknown or unsupported inputs fail with ErrUnsupportedFormat and broken
// ones with ErrMalformed; a decoder that panics on hostile input is recovered
// and reported as ErrMalformed.
//
// Example:
//
//	reg := decode.DefaultRegistry()
//	decoded, err := reg.Decode(data)
package decode
