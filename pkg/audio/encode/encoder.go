// ABOUTME: Encoder interface definition
// ABOUTME: Common interface and sample quantisation for container encoders
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
)

// Encoder encodes decoded audio into a complete container
type Encoder interface {
	// Encode converts decoded audio to container bytes
	Encode(d *audio.Decoded) ([]byte, error)
}

func checkBitDepth(bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
	return nil
}

// quantise converts float samples to signed integers of bitDepth width
func quantise(samples []float32, bitDepth int) []int {
	max := float64(int64(1)<<(bitDepth-1)) - 1
	min := -float64(int64(1) << (bitDepth - 1))

	out := make([]int, len(samples))
	for i, s := range samples {
		v := float64(s) * (max + 1)
		if v > max {
			v = max
		} else if v < min {
			v = min
		}
		out[i] = int(v)
	}
	return out
}
