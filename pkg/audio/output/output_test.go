// ABOUTME: Audio output and realtime adapter tests
// ABOUTME: Verifies underrun accounting, zero allocation and backend plumbing
package output

import (
	"encoding/binary"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/ring"
)

func TestBackendsImplementOutput(t *testing.T) {
	var _ Output = (*PortAudio)(nil)
	var _ Output = (*Oto)(nil)
	var _ Output = (*Malgo)(nil)
	var _ Output = (*Null)(nil)
	var _ Source = (*Adapter)(nil)
}

func TestNew(t *testing.T) {
	for _, name := range Backends() {
		out, err := New(name)
		if err != nil {
			t.Fatalf("New(%q) error = %v", name, err)
		}
		if out.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, out.Name())
		}
	}

	if _, err := New("alsa"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("New(alsa) error = %v, want ErrUnknownBackend", err)
	}
}

func newAdapter(t *testing.T, capacity int) (*Adapter, *ring.Buffer) {
	t.Helper()
	rb, err := ring.New(capacity, 2)
	if err != nil {
		t.Fatal(err)
	}
	return NewAdapter(rb, 48000), rb
}

func TestFillDrainsRing(t *testing.T) {
	a, rb := newAdapter(t, 1024)

	in := make([]float32, 256*2)
	for i := range in {
		in[i] = float32(i) / 1000
	}
	rb.Write(in)

	out := make([]float32, 128*2)
	if got := a.Fill(out); got != 128 {
		t.Fatalf("Fill() = %d, want 128", got)
	}
	for i := range out {
		if out[i] != in[i] {
			t.Fatalf("sample %d = %f, want %f", i, out[i], in[i])
		}
	}

	stats := a.Stats()
	if stats.Underruns != 0 || stats.FramesDelivered != 128 || stats.Callbacks != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.BufferedFrames != 128 {
		t.Errorf("buffered = %d, want 128", stats.BufferedFrames)
	}
	if want := 128 * time.Second / 48000; stats.Latency != want {
		t.Errorf("latency = %v, want %v", stats.Latency, want)
	}
}

func TestFillUnderrunZeroFills(t *testing.T) {
	a, rb := newAdapter(t, 1024)
	rb.Write([]float32{0.5, 0.5, 0.5, 0.5})

	out := make([]float32, 64*2)
	for i := range out {
		out[i] = 9
	}

	if got := a.Fill(out); got != 2 {
		t.Fatalf("Fill() = %d, want 2", got)
	}
	for i := 0; i < 4; i++ {
		if out[i] != 0.5 {
			t.Errorf("sample %d = %f, want 0.5", i, out[i])
		}
	}
	for i := 4; i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d = %f, want silence", i, out[i])
		}
	}

	a.Fill(out)
	stats := a.Stats()
	if stats.Underruns != 2 {
		t.Errorf("underruns = %d, want 2", stats.Underruns)
	}
	if stats.FramesSilent != 62+64 {
		t.Errorf("silent frames = %d, want %d", stats.FramesSilent, 62+64)
	}
	if stats.PeriodFrames != 64 {
		t.Errorf("period frames = %d, want 64", stats.PeriodFrames)
	}
}

func TestFillDoesNotAllocate(t *testing.T) {
	a, rb := newAdapter(t, 4096)
	in := make([]float32, 512*2)
	out := make([]float32, 256*2)

	allocs := testing.AllocsPerRun(100, func() {
		rb.Write(in)
		a.Fill(out)
		a.Fill(out)
		a.Fill(out) // underrun path
	})
	if allocs != 0 {
		t.Errorf("Fill() allocated %v times per run, want 0", allocs)
	}
}

func TestByteFiller(t *testing.T) {
	a, rb := newAdapter(t, 32768)

	// More frames than one scratch chunk
	frames := maxPeriodFrames + 100
	in := make([]float32, frames*2)
	for i := range in {
		in[i] = float32(i%100) / 100
	}
	rb.Write(in)

	f := newByteFiller(a, 2)
	p := make([]byte, frames*2*bytesPerSample+3)
	if n := f.fill(p); n != frames*2*bytesPerSample {
		t.Fatalf("fill() = %d, want %d", n, frames*2*bytesPerSample)
	}

	for _, i := range []int{0, 1, 99, maxPeriodFrames * 2, len(in) - 1} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*bytesPerSample:]))
		if got != in[i] {
			t.Errorf("sample %d = %f, want %f", i, got, in[i])
		}
	}
}

type countingSource struct {
	frames atomic.Int64
}

func (c *countingSource) Fill(dst []float32) int {
	c.frames.Add(int64(len(dst) / 2))
	clear(dst)
	return len(dst) / 2
}

func TestNullOutput(t *testing.T) {
	src := &countingSource{}
	out := NewNull()

	if err := out.Open(48000, 2, 480, src); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := out.Open(48000, 2, 480, src); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("second Open() error = %v, want ErrAlreadyOpen", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for src.frames.Load() < 4800 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := out.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if src.frames.Load() < 4800 {
		t.Errorf("pulled %d frames, want at least 4800", src.frames.Load())
	}
	if err := out.Close(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("second Close() error = %v, want ErrNotOpen", err)
	}
}

func TestOpenValidation(t *testing.T) {
	src := &countingSource{}
	tests := []struct {
		name   string
		rate   int
		ch     int
		period int
		src    Source
	}{
		{"zero rate", 0, 2, 256, src},
		{"zero channels", 48000, 0, 256, src},
		{"zero period", 48000, 2, 0, src},
		{"huge period", 48000, 2, maxPeriodFrames + 1, src},
		{"nil source", 48000, 2, 256, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewNull().Open(tt.rate, tt.ch, tt.period, tt.src); err == nil {
				t.Error("expected error")
			}
		})
	}
}
