// ABOUTME: Audio encoder package for writing decoded audio to containers
// ABOUTME: Provides Encoder interface and WAV/AIFF implementations
// Package encode writes audio.Decoded buffers to self-describing containers.
//
// Supports: WAV and AIFF, 16-bit and 24-bit integer PCM
//
// Float samples are clamped to [-1, 1] before quantising.
//
// Example:
//
//	encoder, err := encode.NewWAV(16)
//	data, err := encoder.Encode(decoded)
package encode
