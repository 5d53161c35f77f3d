// ABOUTME: Timeline and region model package
// ABOUTME: Holds transport state, play-head, tempo and scheduled regions
// Package timeline is the authoritative model of what plays when.
//
// A Timeline owns the transport state machine (Stopped, Playing, Paused), the
// play-head in beats, the tempo and the list of regions. Command goroutines
// mutate it; the render driver takes a short snapshot once per cycle and then
// advances the play-head. The Timeline's mutex is the only blocking primitive
// between those two sides and is never touched by the realtime callback.
//
// Region changes take effect on the next render cycle.
package timeline
