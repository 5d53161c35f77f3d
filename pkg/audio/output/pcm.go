// ABOUTME: Float sample byte packing for byte-oriented device APIs
// ABOUTME: Converts float32 samples to little-endian bytes without allocating
package output

import (
	"encoding/binary"
	"math"
)

const bytesPerSample = 4

// putFloat32LE packs samples into dst as little-endian IEEE floats
func putFloat32LE(dst []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(s))
	}
}

// byteFiller adapts a Source to a byte buffer using a fixed scratch slice
type byteFiller struct {
	src      Source
	channels int
	scratch  []float32
}

func newByteFiller(src Source, channels int) *byteFiller {
	return &byteFiller{
		src:      src,
		channels: channels,
		scratch:  make([]float32, maxPeriodFrames*channels),
	}
}

// fill packs whole frames into p in scratch-sized chunks and returns the
// number of bytes written
func (f *byteFiller) fill(p []byte) int {
	frameBytes := f.channels * bytesPerSample
	frames := len(p) / frameBytes
	chunk := len(f.scratch) / f.channels

	done := 0
	for done < frames {
		n := frames - done
		if n > chunk {
			n = chunk
		}
		buf := f.scratch[:n*f.channels]
		f.src.Fill(buf)
		putFloat32LE(p[done*frameBytes:], buf)
		done += n
	}
	return frames * frameBytes
}
