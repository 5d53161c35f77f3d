// ABOUTME: Output soft clipping
// ABOUTME: Passes [-1, 1] through and compresses overs asymptotically below full scale
package engine

import "math"

// maxOut is the largest float32 strictly below full scale
var maxOut = math.Nextafter32(1, 0)

// SoftClip shapes one output sample. Values strictly inside (-1, 1) are
// returned unchanged; anything else maps to sign(x)*(1-exp(-|x|)), which stays
// strictly below full scale. NaN becomes silence.
func SoftClip(x float32) float32 {
	if x > -1 && x < 1 {
		return x
	}
	if x != x {
		return 0
	}

	y := float32(1 - math.Exp(-math.Abs(float64(x))))
	if y > maxOut {
		y = maxOut
	}
	if x < 0 {
		return -y
	}
	return y
}

// softClipBlock clips buf in place and returns how many samples were shaped
func softClipBlock(buf []float32) int {
	clipped := 0
	for i, s := range buf {
		if s > -1 && s < 1 {
			continue
		}
		buf[i] = SoftClip(s)
		clipped++
	}
	return clipped
}
