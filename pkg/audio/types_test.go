// ABOUTME: Tests for audio types
// ABOUTME: Tests decoded buffers and sample conversion functions
package audio

import (
	"errors"
	"testing"
)

func TestFloatFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected float32
	}{
		{"zero", 0, 0},
		{"half", 16384, 0.5},
		{"negative half", -16384, -0.5},
		{"min", -32768, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FloatFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestFloatToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"half", 0.5, 16384},
		{"negative half", -0.5, -16384},
		{"over range", 1.5, Max16Bit},
		{"under range", -1.5, Min16Bit},
		{"exact one", 1.0, Max16Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FloatToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestFloatFromInt(t *testing.T) {
	tests := []struct {
		name     string
		sample   int
		bitDepth int
		expected float32
	}{
		{"8bit midpoint", 128, 8, 0},
		{"8bit min", 0, 8, -1},
		{"16bit half", 16384, 16, 0.5},
		{"24bit half", 4194304, 24, 0.5},
		{"32bit half", 1073741824, 32, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FloatFromInt(tt.sample, tt.bitDepth)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestNewDecoded(t *testing.T) {
	d, err := NewDecoded([]float32{0.1, 0.2, 0.3, 0.4}, 48000, 2)
	if err != nil {
		t.Fatalf("failed to create decoded buffer: %v", err)
	}

	if d.Frames() != 2 {
		t.Errorf("expected 2 frames, got %d", d.Frames())
	}
	if d.SampleRate() != 48000 {
		t.Errorf("expected 48000, got %d", d.SampleRate())
	}

	l, r := d.Frame(1)
	if l != 0.3 || r != 0.4 {
		t.Errorf("expected (0.3, 0.4), got (%f, %f)", l, r)
	}
}

func TestNewDecoded_Invalid(t *testing.T) {
	if _, err := NewDecoded(nil, 0, 2); !errors.Is(err, ErrEmptyFormat) {
		t.Errorf("expected ErrEmptyFormat, got %v", err)
	}

	if _, err := NewDecoded([]float32{1, 2, 3}, 48000, 2); err == nil {
		t.Error("expected error for ragged sample count")
	}
}

func TestDecodedFrame_MonoAndOutOfRange(t *testing.T) {
	d, err := NewDecoded([]float32{0.25, -0.25}, 48000, 1)
	if err != nil {
		t.Fatalf("failed to create decoded buffer: %v", err)
	}

	l, r := d.Frame(1)
	if l != -0.25 || r != -0.25 {
		t.Errorf("expected mono duplicated to both sides, got (%f, %f)", l, r)
	}

	l, r = d.Frame(2)
	if l != 0 || r != 0 {
		t.Errorf("expected silence past the end, got (%f, %f)", l, r)
	}

	l, r = d.Frame(-1)
	if l != 0 || r != 0 {
		t.Errorf("expected silence before the start, got (%f, %f)", l, r)
	}
}

func TestDecodedFrame_Multichannel(t *testing.T) {
	d, err := NewDecoded([]float32{0.1, 0.2, 0.9, 0.9}, 48000, 4)
	if err != nil {
		t.Fatalf("failed to create decoded buffer: %v", err)
	}

	l, r := d.Frame(0)
	if l != 0.1 || r != 0.2 {
		t.Errorf("expected first two channels, got (%f, %f)", l, r)
	}
}
