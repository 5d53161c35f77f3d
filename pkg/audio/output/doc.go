// ABOUTME: Audio output package for realtime playback
// ABOUTME: Provides the realtime Adapter and pull-based device backends
// Package output binds the output ring to a host audio callback.
//
// The Adapter is the only code that runs on the realtime thread. Each
// callback copies finished frames out of the lock-free ring, fills any
// shortfall with silence and updates atomic counters. It never allocates,
// locks, logs or blocks.
//
// Backends (oto, malgo, portaudio, null) own the device and call
// Adapter.Fill from their callback. PortAudio is only built with the
// "portaudio" build tag.
//
// Example:
//
//	adapter := output.NewAdapter(rb)
//	out, err := output.New("malgo")
//	err = out.Open(48000, 2, 256, adapter)
package output
