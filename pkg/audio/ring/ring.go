// ABOUTME: Lock-free SPSC ring buffer of interleaved float32 frames
// ABOUTME: Free-running atomic cursors, power-of-two capacity, overflow accounting
package ring

import (
	"errors"
	"sync/atomic"
)

// ErrInvalidSize is returned when capacity or channel count is not positive
var ErrInvalidSize = errors.New("ring: capacity and channels must be positive")

// maxFrames bounds the capacity so cursor arithmetic never overflows an int slice index
const maxFrames = 1 << 30

// Buffer is a fixed-capacity frame queue for one producer and one consumer.
//
// Both cursors count frames and increase forever; only the mask is applied when
// indexing storage. readPos == writePos means empty and writePos-readPos ==
// capacity means full. Each cursor is stored by exactly one side.
type Buffer struct {
	data     []float32
	channels int
	size     uint64 // capacity in frames, power of two
	mask     uint64

	// Separate cache lines for the two cursors, written by different goroutines.
	writePos atomic.Uint64
	_        [56]byte
	readPos  atomic.Uint64
	_        [56]byte

	overflow atomic.Uint64 // frames the producer could not place
}

// New allocates a ring holding at least capacityFrames frames of the given
// channel count. Capacity is rounded up to a power of two.
func New(capacityFrames, channels int) (*Buffer, error) {
	if capacityFrames <= 0 || channels <= 0 || capacityFrames > maxFrames {
		return nil, ErrInvalidSize
	}

	size := uint64(1)
	for size < uint64(capacityFrames) {
		size <<= 1
	}

	return &Buffer{
		data:     make([]float32, int(size)*channels),
		channels: channels,
		size:     size,
		mask:     size - 1,
	}, nil
}

// Channels returns the interleaved channel count
func (b *Buffer) Channels() int { return b.channels }

// Capacity returns the capacity in frames
func (b *Buffer) Capacity() int { return int(b.size) }

// Write copies whole frames from samples into the ring and returns the number
// of frames written. A short count means the ring was full; the missing frames
// are added to the overflow counter. Producer side only.
func (b *Buffer) Write(samples []float32) int {
	frames := uint64(len(samples) / b.channels)
	if frames == 0 {
		return 0
	}

	w := b.writePos.Load()
	r := b.readPos.Load()
	free := b.size - (w - r)

	n := frames
	if n > free {
		b.overflow.Add(n - free)
		n = free
	}
	if n == 0 {
		return 0
	}

	ch := uint64(b.channels)
	start := w & b.mask
	first := n
	if start+n > b.size {
		first = b.size - start
	}
	copy(b.data[start*ch:(start+first)*ch], samples[:first*ch])
	if first < n {
		copy(b.data[:(n-first)*ch], samples[first*ch:n*ch])
	}

	// Publish only after the frames are in place.
	b.writePos.Store(w + n)
	return int(n)
}

// Read copies up to len(dst)/channels frames into dst and returns the number
// of frames read, zero when empty. dst beyond the returned frames is left
// untouched. Consumer side only.
func (b *Buffer) Read(dst []float32) int {
	want := uint64(len(dst) / b.channels)
	if want == 0 {
		return 0
	}

	r := b.readPos.Load()
	w := b.writePos.Load()
	avail := w - r

	n := want
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	ch := uint64(b.channels)
	start := r & b.mask
	first := n
	if start+n > b.size {
		first = b.size - start
	}
	copy(dst[:first*ch], b.data[start*ch:(start+first)*ch])
	if first < n {
		copy(dst[first*ch:n*ch], b.data[:(n-first)*ch])
	}

	b.readPos.Store(r + n)
	return int(n)
}

// Available returns the number of frames ready to read. Safe from either side;
// the answer is a snapshot.
func (b *Buffer) Available() int {
	// Load the read cursor first so w >= r holds for the pair.
	r := b.readPos.Load()
	w := b.writePos.Load()
	n := w - r
	if n > b.size {
		n = b.size
	}
	return int(n)
}

// Free returns the number of frames that can be written without overflow
func (b *Buffer) Free() int {
	return int(b.size) - b.Available()
}

// Overflow returns the total number of frames dropped by short writes
func (b *Buffer) Overflow() uint64 {
	return b.overflow.Load()
}

// Written returns the total number of frames ever written
func (b *Buffer) Written() uint64 {
	return b.writePos.Load()
}

// Consumed returns the total number of frames ever read
func (b *Buffer) Consumed() uint64 {
	return b.readPos.Load()
}
