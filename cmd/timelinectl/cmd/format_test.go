// ABOUTME: Tests for CLI result rendering
// ABOUTME: Checks each result shape prints the expected summary
package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
)

func TestWriteResult(t *testing.T) {
	tests := []struct {
		name string
		res  command.Result
		want []string
	}{
		{
			"status",
			command.Result{OK: true, Status: &command.Status{State: "playing", Position: 4.5, Tempo: 120}},
			[]string{"playing", "beat 4.500", "120.00 BPM"},
		},
		{
			"failure",
			command.Result{Code: command.CodeContentNotFound, Error: "content x: not_found"},
			[]string{"content_not_found: content x: not_found"},
		},
		{
			"region id",
			command.Result{OK: true, RegionID: "abc"},
			[]string{"abc"},
		},
		{
			"empty list",
			command.Result{OK: true},
			[]string{"no regions"},
		},
		{
			"regions",
			command.Result{OK: true, Regions: []timeline.Info{
				{ID: "r1", Position: 0, Duration: 4, Behavior: "play_content", ContentID: "c1", Resolved: true, Frames: 96000},
				{ID: "r2", Position: 4, Duration: 2, Behavior: "play_content"},
			}},
			[]string{"ID", "r1", "c1", "96000", "r2", "-"},
		},
		{
			"bounce",
			command.Result{OK: true, Bounce: &command.BounceResult{Path: "/tmp/x.wav", Frames: 10, Bytes: 84}},
			[]string{"wrote /tmp/x.wav (10 frames, 84 bytes)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeResult(&buf, tt.res)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q missing %q", buf.String(), want)
				}
			}
		})
	}
}

func TestPrintResultFailure(t *testing.T) {
	var buf bytes.Buffer
	if err := printResult(&buf, command.Result{Code: command.CodeInvalidTransition, Error: "x"}); err != errCommandFailed {
		t.Errorf("expected errCommandFailed, got %v", err)
	}
	if err := printResult(&buf, command.Result{OK: true, RegionID: "r"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
