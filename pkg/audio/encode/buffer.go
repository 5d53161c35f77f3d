// ABOUTME: In-memory io.WriteSeeker
// ABOUTME: Lets go-audio encoders patch headers without touching disk
package encode

import (
	"errors"
	"io"
)

var errNegativeOffset = errors.New("encode: negative seek offset")

// Buffer is a growable byte slice with a write cursor
type Buffer struct {
	data []byte
	pos  int
}

// Write writes p at the cursor, growing the buffer as needed
func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		if end > cap(b.data) {
			grown := make([]byte, end, 2*end)
			copy(grown, b.data)
			b.data = grown
		} else {
			b.data = b.data[:end]
		}
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

// Seek moves the write cursor
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(b.pos) + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("encode: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativeOffset
	}
	b.pos = int(abs)
	return abs, nil
}

// Bytes returns everything written so far
func (b *Buffer) Bytes() []byte {
	return b.data
}
