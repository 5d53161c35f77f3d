// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Decoded buffers and sample conversion functions
// Package audio provides the fundamental audio types shared by the timeline engine.
//
// This package defines core types used throughout the engine:
//   - Format: Describes a PCM stream (sample rate, channels, bit depth)
//   - Decoded: An immutable, shareable buffer of interleaved float32 samples
//
// It also provides utilities for converting between integer PCM and the
// float32 [-1, 1] representation used on the render path:
//   - int16 ↔ float32
//   - n-bit integer → float32
//
// Example:
//
//	d, err := audio.NewDecoded(samples, 48000, 2)
//	frames := d.Frames()
//	l, r := d.Frame(0)
package audio
