// ABOUTME: Realtime output adapter
// ABOUTME: Drains the ring into device buffers and counts underruns lock-free
package output

import (
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/ring"
)

// Stats is a snapshot of realtime callback activity
type Stats struct {
	Callbacks       uint64        `json:"callbacks"`
	FramesDelivered uint64        `json:"frames_delivered"`
	FramesSilent    uint64        `json:"frames_silent"`
	Underruns       uint64        `json:"underruns"`
	PeriodFrames    int           `json:"period_frames"`
	CallbackPeriod  time.Duration `json:"callback_period_ns"`
	FillTime        time.Duration `json:"fill_time_ns"`
	MaxFillTime     time.Duration `json:"max_fill_time_ns"`
	BufferedFrames  int           `json:"buffered_frames"`
	Latency         time.Duration `json:"latency_ns"`
}

// Adapter feeds a device callback from the output ring
type Adapter struct {
	ring       *ring.Buffer
	channels   int
	sampleRate int

	callbacks atomic.Uint64
	delivered atomic.Uint64
	silent    atomic.Uint64
	underruns atomic.Uint64

	periodFrames atomic.Int64
	lastStart    atomic.Int64 // unix nanos
	period       atomic.Int64
	fillTime     atomic.Int64
	maxFillTime  atomic.Int64
}

// NewAdapter creates an adapter reading from rb at sampleRate
func NewAdapter(rb *ring.Buffer, sampleRate int) *Adapter {
	return &Adapter{
		ring:       rb,
		channels:   rb.Channels(),
		sampleRate: sampleRate,
	}
}

// Channels returns the interleaved channel count the adapter produces
func (a *Adapter) Channels() int {
	return a.channels
}

// Fill writes len(dst)/channels frames into dst and returns how many came
// from the ring. The rest is silence and counts as an underrun.
// Safe to call from a realtime thread.
func (a *Adapter) Fill(dst []float32) int {
	start := time.Now().UnixNano()

	frames := len(dst) / a.channels
	got := a.ring.Read(dst[:frames*a.channels])
	if got < frames {
		clear(dst[got*a.channels:])
		a.underruns.Add(1)
		a.silent.Add(uint64(frames - got))
	}

	a.callbacks.Add(1)
	a.delivered.Add(uint64(got))
	a.periodFrames.Store(int64(frames))

	if prev := a.lastStart.Swap(start); prev != 0 {
		a.period.Store(start - prev)
	}

	elapsed := time.Now().UnixNano() - start
	a.fillTime.Store(elapsed)
	for {
		max := a.maxFillTime.Load()
		if elapsed <= max || a.maxFillTime.CompareAndSwap(max, elapsed) {
			break
		}
	}

	return got
}

// Stats returns a snapshot of the counters without blocking the callback
func (a *Adapter) Stats() Stats {
	buffered := a.ring.Available()

	var latency time.Duration
	if a.sampleRate > 0 {
		latency = time.Duration(buffered) * time.Second / time.Duration(a.sampleRate)
	}

	return Stats{
		Callbacks:       a.callbacks.Load(),
		FramesDelivered: a.delivered.Load(),
		FramesSilent:    a.silent.Load(),
		Underruns:       a.underruns.Load(),
		PeriodFrames:    int(a.periodFrames.Load()),
		CallbackPeriod:  time.Duration(a.period.Load()),
		FillTime:        time.Duration(a.fillTime.Load()),
		MaxFillTime:     time.Duration(a.maxFillTime.Load()),
		BufferedFrames:  buffered,
		Latency:         latency,
	}
}
