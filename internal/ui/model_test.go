// ABOUTME: Tests for the watch screen model
// ABOUTME: Tests polling, key handling and rendering with a fake client
package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeClient struct {
	mu     sync.Mutex
	sent   []command.Command
	status command.Status
	err    error
}

func (f *fakeClient) Do(ctx context.Context, cmd command.Command) (command.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	if f.err != nil {
		return command.Result{}, f.err
	}

	switch cmd.(type) {
	case command.GetStatus:
		st := f.status
		return command.Result{OK: true, Status: &st}, nil
	case command.GetStats:
		return command.Result{OK: false, Code: command.CodeUnavailable}, nil
	case command.ListRegions:
		return command.Result{OK: true, Regions: []timeline.Info{
			{ID: "region-one", Position: 0, Duration: 8, ContentID: "abc", Resolved: true},
		}}, nil
	case command.Play:
		return command.Result{OK: true, Status: &command.Status{State: "playing", Tempo: f.status.Tempo}}, nil
	}
	return command.Result{OK: true}, nil
}

func (f *fakeClient) last() command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model := NewModel(&fakeClient{}, "studio", 0)

	if model.connected {
		t.Error("expected connected to be false initially")
	}
	if model.interval != 250*time.Millisecond {
		t.Errorf("expected default interval 250ms, got %v", model.interval)
	}
	if !model.showRegions {
		t.Error("expected regions to be shown initially")
	}
}

func TestPoll(t *testing.T) {
	client := &fakeClient{status: command.Status{State: "paused", Position: 5, Tempo: 128}}
	model := NewModel(client, "studio", time.Second)

	msg := model.Init()()
	snap, ok := msg.(SnapshotMsg)
	if !ok {
		t.Fatalf("expected SnapshotMsg, got %T", msg)
	}
	if snap.Err != nil || snap.Status == nil || snap.Stats != nil || len(snap.Regions) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	updated, cmd := model.Update(snap)
	if cmd == nil {
		t.Error("expected a tick to be scheduled after a snapshot")
	}
	m := updated.(Model)
	if !m.connected || m.status.Tempo != 128 {
		t.Errorf("unexpected model state: %+v", m.status)
	}

	view := m.View()
	for _, want := range []string{"paused", "128.00 BPM", "2.2 (5.000)", "Regions (1)", "regio..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPollError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	model := NewModel(client, "studio", time.Second)

	updated, _ := model.Update(model.Init()())
	m := updated.(Model)
	if m.connected {
		t.Error("expected disconnected after failed poll")
	}
	view := m.View()
	if !strings.Contains(view, "Disconnected") || !strings.Contains(view, "connection refused") {
		t.Errorf("view does not report the failure:\n%s", view)
	}
}

func TestSpaceTogglesTransport(t *testing.T) {
	client := &fakeClient{status: command.Status{State: "stopped", Tempo: 120}}
	model := NewModel(client, "studio", time.Second)

	_, cmd := model.Update(key(" "))
	msg := cmd()
	if _, ok := client.last().(command.Play); !ok {
		t.Fatalf("expected Play, sent %T", client.last())
	}

	updated, _ := model.Update(msg)
	m := updated.(Model)
	if m.status.State != "playing" {
		t.Errorf("expected playing after action, got %s", m.status.State)
	}

	_, cmd = m.Update(key(" "))
	cmd()
	if _, ok := client.last().(command.Pause); !ok {
		t.Errorf("expected Pause, sent %T", client.last())
	}
}

func TestTempoKeys(t *testing.T) {
	client := &fakeClient{}
	model := NewModel(client, "studio", time.Second)
	model.status.Tempo = 100

	_, cmd := model.Update(key("+"))
	cmd()
	if got, ok := client.last().(command.SetTempo); !ok || got.BPM != 101 {
		t.Errorf("expected SetTempo 101, sent %+v", client.last())
	}

	_, cmd = model.Update(key("-"))
	cmd()
	if got, ok := client.last().(command.SetTempo); !ok || got.BPM != 99 {
		t.Errorf("expected SetTempo 99, sent %+v", client.last())
	}
}

func TestActionFailureShown(t *testing.T) {
	model := NewModel(&fakeClient{}, "studio", time.Second)
	updated, _ := model.Update(ActionMsg{Name: command.NamePause, Result: command.Result{Code: command.CodeInvalidTransition}})
	m := updated.(Model)
	if m.lastErr != "transport/pause: invalid_transition" {
		t.Errorf("unexpected error text: %q", m.lastErr)
	}
}

func TestQuit(t *testing.T) {
	model := NewModel(&fakeClient{}, "studio", time.Second)
	updated, cmd := model.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if updated.(Model).View() != "" {
		t.Error("expected empty view after quit")
	}
}

func TestFormatBeat(t *testing.T) {
	tests := []struct {
		beat float64
		want string
	}{
		{0, "1.1 (0.000)"},
		{3.5, "1.4 (3.500)"},
		{4, "2.1 (4.000)"},
		{17.25, "5.2 (17.250)"},
	}
	for _, tt := range tests {
		if got := formatBeat(tt.beat); got != tt.want {
			t.Errorf("formatBeat(%v) = %s, want %s", tt.beat, got, tt.want)
		}
	}
}

func TestRenderRegion(t *testing.T) {
	r := timeline.Info{ID: "abcdefghij", Position: 4, Duration: 2}
	line := renderRegion(r, 5)
	if !strings.HasPrefix(line, " > ") {
		t.Errorf("expected play-head marker: %q", line)
	}
	if !strings.Contains(line, "(silent)") || !strings.Contains(line, "abcde...") {
		t.Errorf("unexpected line: %q", line)
	}
}
