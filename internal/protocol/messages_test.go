// ABOUTME: Tests for control protocol messages
// ABOUTME: Verifies request decoding into commands and envelope marshaling
package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
)

func parse(t *testing.T, raw string) Message {
	t.Helper()
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("failed to unmarshal %s: %v", raw, err)
	}
	return msg
}

func TestDecodeCreateRegion(t *testing.T) {
	msg := parse(t, `{"type":"region/create","id":"req-1","payload":{"position":4,"duration":2.5,"behavior":"play_content","content_id":"abc"}}`)
	if msg.ID != "req-1" {
		t.Errorf("expected id req-1, got %s", msg.ID)
	}

	cmd, err := DecodeCommand(msg)
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	c, ok := cmd.(*command.CreateRegion)
	if !ok {
		t.Fatalf("expected *command.CreateRegion, got %T", cmd)
	}
	if c.Position != 4 || c.Duration != 2.5 || c.Behavior != "play_content" || c.ContentID != "abc" {
		t.Errorf("unexpected command: %+v", c)
	}
}

func TestDecodeCommands(t *testing.T) {
	tests := []struct {
		raw  string
		want command.Command
	}{
		{`{"type":"transport/play","id":"1"}`, command.Play{}},
		{`{"type":"transport/pause","id":"2"}`, command.Pause{}},
		{`{"type":"transport/stop","id":"3"}`, command.Stop{}},
		{`{"type":"transport/seek","id":"4","payload":{"beat":16}}`, command.Seek{Beat: 16}},
		{`{"type":"transport/set_tempo","id":"5","payload":{"bpm":97.5}}`, command.SetTempo{BPM: 97.5}},
		{`{"type":"region/delete","id":"6","payload":{"region_id":"r1"}}`, command.DeleteRegion{RegionID: "r1"}},
		{`{"type":"region/move","id":"7","payload":{"region_id":"r1","position":3}}`, command.MoveRegion{RegionID: "r1", Position: 3}},
		{`{"type":"region/list","id":"8"}`, command.ListRegions{}},
		{`{"type":"status/get","id":"9"}`, command.GetStatus{}},
		{`{"type":"stats/get","id":"10"}`, command.GetStats{}},
		{`{"type":"export/bounce","id":"11","payload":{"from":0,"to":8,"file":"mix"}}`, command.Bounce{From: 0, To: 8, File: "mix"}},
	}

	for _, tt := range tests {
		cmd, err := DecodeCommand(parse(t, tt.raw))
		if err != nil {
			t.Errorf("DecodeCommand(%s): %v", tt.raw, err)
			continue
		}
		if cmd != tt.want {
			t.Errorf("DecodeCommand(%s) = %#v, want %#v", tt.raw, cmd, tt.want)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeCommand(parse(t, `{"type":"transport/rewind"}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if _, err := DecodeCommand(parse(t, `{"type":"transport/seek","payload":{"beat":"soon"}}`)); err == nil {
		t.Error("expected error for non-numeric beat")
	}
}

func TestCommandsAreDecodable(t *testing.T) {
	for _, name := range Commands() {
		if _, err := DecodeCommand(Message{Type: name}); err != nil {
			t.Errorf("command %s not decodable: %v", name, err)
		}
	}
}

func TestResponseMarshaling(t *testing.T) {
	msg := Message{
		Type:    TypeResponse,
		ID:      "req-9",
		Payload: command.Result{OK: false, Code: command.CodeContentNotFound, Error: "content x: not_found"},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	decoded := parse(t, string(data))
	var res command.Result
	if err := DecodePayload(decoded.Payload, &res); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if res.OK || res.Code != command.CodeContentNotFound {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestMutates(t *testing.T) {
	if !Mutates(command.NameSeek) || !Mutates(command.NameCreateRegion) {
		t.Error("seek and create should mutate")
	}
	if Mutates(command.NameGetStatus) || Mutates(command.NameBounce) {
		t.Error("status and bounce should not mutate")
	}
}
