// ABOUTME: Unit tests for container encoders
// ABOUTME: Tests bit depth validation, quantisation and in-memory seeking
package encode

import (
	"bytes"
	"io"
	"testing"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
)

func TestNewWAV(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		wantErr  bool
	}{
		{"16-bit", 16, false},
		{"24-bit", 24, false},
		{"8-bit", 8, true},
		{"32-bit", 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWAV(tt.bitDepth)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWAV(%d) error = %v, wantErr %v", tt.bitDepth, err, tt.wantErr)
			}
			_, err = NewAIFF(tt.bitDepth)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAIFF(%d) error = %v, wantErr %v", tt.bitDepth, err, tt.wantErr)
			}
		})
	}
}

func TestQuantise(t *testing.T) {
	got := quantise([]float32{0, 0.5, -0.5, 1, -1, 2, -2}, 16)
	want := []int{0, 16384, -16384, 32767, -32768, 32767, -32768}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestWAVHeader(t *testing.T) {
	d, err := audio.NewDecoded(make([]float32, 200), 48000, 2)
	if err != nil {
		t.Fatal(err)
	}

	enc, err := NewWAV(16)
	if err != nil {
		t.Fatal(err)
	}

	data, err := enc.Encode(d)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Fatalf("missing RIFF/WAVE header: %q", data[:12])
	}
	// 44 byte canonical header + 100 frames * 2 channels * 2 bytes
	if len(data) != 44+400 {
		t.Errorf("len = %d, want %d", len(data), 44+400)
	}
}

func TestEncodeNil(t *testing.T) {
	enc, _ := NewWAV(16)
	if _, err := enc.Encode(nil); err == nil {
		t.Error("expected error for nil input")
	}
}

func TestBufferSeek(t *testing.T) {
	b := &Buffer{}
	b.Write([]byte("hello world"))

	if _, err := b.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("HELLO"))

	if _, err := b.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	b.Write([]byte("!"))

	if got := string(b.Bytes()); got != "HELLO world!" {
		t.Errorf("Bytes() = %q, want %q", got, "HELLO world!")
	}

	if _, err := b.Seek(-1, io.SeekStart); err == nil {
		t.Error("expected error for negative offset")
	}
}
