// ABOUTME: Playback engine package
// ABOUTME: Mixes active regions into stereo blocks and drives the output ring
// Package engine renders the timeline to audio.
//
// Engine.Render runs one render cycle: it snapshots the regions active in the
// next block, sums their audio into an interleaved stereo buffer, soft clips
// the result and advances the play-head. Driver calls Render on its own
// goroutine and keeps the output ring topped up, so the realtime callback only
// ever copies finished samples.
//
// Mixing is plain summation. There is no per-region gain, pan or resampling.
package engine
