// ABOUTME: Command surface package
// ABOUTME: Typed command queue that applies control commands to the timeline
// Package command is the single entry point for control commands.
//
// Transports (the websocket server, tests, the CLI) submit typed commands to
// a Dispatcher. Work that may block on I/O runs in the submitting goroutine
// first: content resolution for region/create and rendering for
// export/bounce. The timeline mutation itself is applied by one worker
// goroutine in submission order, so commands never interleave and a failed
// command leaves the timeline untouched.
package command
