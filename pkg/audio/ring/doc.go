// ABOUTME: Lock-free single-producer/single-consumer ring for audio frames
// ABOUTME: Carries rendered audio across the realtime callback boundary
// Package ring provides the only channel through which audio reaches a
// realtime callback.
//
// A Buffer has exactly one writer (the render driver) and one reader (the
// device callback). Neither side ever blocks, locks or allocates after New:
// a full buffer accepts a partial write, an empty one returns zero frames.
//
// Example:
//
//	rb := ring.New(9600, 2) // 200ms of stereo at 48kHz
//	written := rb.Write(block)
//	read := rb.Read(hw)
package ring
