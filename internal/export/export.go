// ABOUTME: Offline bounce of the timeline to an audio file
// ABOUTME: Renders a beat range through a cloned timeline with the realtime engine
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/encode"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/engine"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

const (
	// blockFrames matches the default realtime block so offline output is identical
	blockFrames = 256

	// MaxBeats bounds a single bounce
	MaxBeats = 4096

	// MaxSeconds bounds the rendered length whatever the tempo
	MaxSeconds = 600
)

var ErrInvalidRange = errors.New("export: invalid beat range")

// Render renders [from, to) beats of tl at the tempo it has now.
// The live timeline is not touched.
func Render(tl *timeline.Timeline, sampleRate int, from, to float64) (*audio.Decoded, error) {
	if math.IsNaN(from) || math.IsNaN(to) || from < 0 || to <= from || to-from > MaxBeats {
		return nil, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, from, to)
	}

	offline := tl.Clone()
	if seconds := (to - from) * 60 / offline.Status().Tempo; seconds > MaxSeconds {
		return nil, fmt.Errorf("%w: %.0fs exceeds %ds", ErrInvalidRange, seconds, MaxSeconds)
	}
	if err := offline.Seek(from); err != nil {
		return nil, err
	}
	offline.Play()

	e, err := engine.New(offline, sampleRate)
	if err != nil {
		return nil, err
	}

	total := int(math.Round(timeline.BeatsToFrames(to-from, sampleRate, offline.Status().Tempo)))
	out := make([]float32, total*engine.Channels)

	for done := 0; done < total; {
		n := blockFrames
		if total-done < n {
			n = total - done
		}
		e.Render(out[done*engine.Channels : (done+n)*engine.Channels])
		done += n
	}

	return audio.NewDecoded(out, sampleRate, engine.Channels)
}

// Bounce renders [from, to), encodes it with enc and returns the encoded
// bytes with the number of frames rendered
func Bounce(tl *timeline.Timeline, sampleRate int, from, to float64, enc encode.Encoder) ([]byte, int, error) {
	d, err := Render(tl, sampleRate, from, to)
	if err != nil {
		return nil, 0, err
	}

	data, err := enc.Encode(d)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode bounce: %w", err)
	}
	return data, d.Frames(), nil
}
