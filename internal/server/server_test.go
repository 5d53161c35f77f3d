// ABOUTME: Tests for the WebSocket control server
// ABOUTME: Runs the handler under httptest and speaks the protocol with gorilla/websocket
package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/command"
	"github.com/Resonate-Protocol/resonate-timeline/internal/protocol"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/content"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/timeline"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tl, err := timeline.New(120)
	if err != nil {
		t.Fatal(err)
	}
	d := command.NewDispatcher(command.Config{
		Timeline:   tl,
		Resolver:   content.NewResolver(content.NewMemStore(), decode.DefaultRegistry(), 48000),
		SampleRate: 48000,
	})
	d.Start()
	t.Cleanup(d.Stop)

	srv := New(Config{Name: "test", SampleRate: 48000}, d)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/timeline"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, msg protocol.Message) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message %s: %v", data, err)
	}
	return msg
}

// readType skips messages until one of the wanted type arrives
func readType(t *testing.T, conn *websocket.Conn, typ string) protocol.Message {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := read(t, conn)
		if msg.Type == typ {
			return msg
		}
	}
	t.Fatalf("no %s message received", typ)
	return protocol.Message{}
}

func handshake(t *testing.T, conn *websocket.Conn, id string) protocol.ServerHello {
	t.Helper()
	write(t, conn, protocol.Message{
		Type:    protocol.TypeClientHello,
		Payload: protocol.ClientHello{ClientID: id, Name: "tester", Version: protocol.Version},
	})

	msg := read(t, conn)
	if msg.Type != protocol.TypeServerHello {
		t.Fatalf("expected server/hello, got %s", msg.Type)
	}
	var hello protocol.ServerHello
	if err := protocol.DecodePayload(msg.Payload, &hello); err != nil {
		t.Fatal(err)
	}
	return hello
}

func request(t *testing.T, conn *websocket.Conn, id, typ string, payload interface{}) command.Result {
	t.Helper()
	write(t, conn, protocol.Message{Type: typ, ID: id, Payload: payload})

	msg := readType(t, conn, protocol.TypeResponse)
	if msg.ID != id {
		t.Fatalf("expected response id %s, got %s", id, msg.ID)
	}
	var res command.Result
	if err := protocol.DecodePayload(msg.Payload, &res); err != nil {
		t.Fatal(err)
	}
	return res
}

func TestHandshake(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	hello := handshake(t, conn, "c1")
	if hello.Name != "test" || hello.Version != protocol.Version || hello.SampleRate != 48000 {
		t.Errorf("unexpected hello: %+v", hello)
	}
	if len(hello.Commands) != len(protocol.Commands()) {
		t.Errorf("expected %d commands, got %d", len(protocol.Commands()), len(hello.Commands))
	}
}

func TestHandshakeRequired(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	write(t, conn, protocol.Message{Type: command.NamePlay, ID: "1"})
	msg := read(t, conn)
	if msg.Type != protocol.TypeError {
		t.Fatalf("expected server/error, got %s", msg.Type)
	}
	var serverErr protocol.ServerError
	protocol.DecodePayload(msg.Payload, &serverErr)
	if serverErr.Error != protocol.ErrorHandshakeExpected {
		t.Errorf("expected %s, got %s", protocol.ErrorHandshakeExpected, serverErr.Error)
	}
}

func TestVersionMismatch(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)

	write(t, conn, protocol.Message{
		Type:    protocol.TypeClientHello,
		Payload: protocol.ClientHello{ClientID: "c1", Name: "old", Version: 99},
	})
	msg := read(t, conn)
	var serverErr protocol.ServerError
	protocol.DecodePayload(msg.Payload, &serverErr)
	if msg.Type != protocol.TypeError || serverErr.Error != protocol.ErrorVersionMismatch {
		t.Errorf("expected version mismatch, got %+v", msg)
	}
}

func TestDuplicateClientRejected(t *testing.T) {
	ts := newTestServer(t)
	first := dial(t, ts)
	handshake(t, first, "same")

	second := dial(t, ts)
	write(t, second, protocol.Message{
		Type:    protocol.TypeClientHello,
		Payload: protocol.ClientHello{ClientID: "same", Name: "dup", Version: protocol.Version},
	})
	msg := read(t, second)
	var serverErr protocol.ServerError
	protocol.DecodePayload(msg.Payload, &serverErr)
	if serverErr.Error != protocol.ErrorDuplicateClient {
		t.Errorf("expected %s, got %+v", protocol.ErrorDuplicateClient, msg)
	}
}

func TestRequestResponse(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts)
	handshake(t, conn, "c1")

	res := request(t, conn, "r1", command.NamePlay, nil)
	if !res.OK || res.Status == nil || res.Status.State != "playing" {
		t.Errorf("play: %+v", res)
	}

	res = request(t, conn, "r2", command.NameSeek, command.Seek{Beat: 8})
	if !res.OK || res.Status.Position != 8 {
		t.Errorf("seek: %+v", res)
	}

	res = request(t, conn, "r3", command.NameCreateRegion, &command.CreateRegion{
		Position: 0, Duration: 4, Behavior: "play_content", ContentID: "missing",
	})
	if res.OK || res.Code != command.CodeContentNotFound {
		t.Errorf("create with missing content: %+v", res)
	}

	res = request(t, conn, "r4", "transport/rewind", nil)
	if res.OK || res.Code != command.CodeUnknownCommand {
		t.Errorf("unknown command: %+v", res)
	}

	res = request(t, conn, "r5", command.NameSeek, map[string]string{"beat": "later"})
	if res.OK || res.Code != command.CodeInvalidArgument {
		t.Errorf("bad payload: %+v", res)
	}
}

func TestStatusBroadcast(t *testing.T) {
	ts := newTestServer(t)
	a := dial(t, ts)
	handshake(t, a, "a")
	b := dial(t, ts)
	handshake(t, b, "b")

	request(t, a, "1", command.NameSetTempo, command.SetTempo{BPM: 140})

	msg := readType(t, b, protocol.TypeStatus)
	var update protocol.StatusUpdate
	if err := protocol.DecodePayload(msg.Payload, &update); err != nil {
		t.Fatal(err)
	}
	if update.Cause != command.NameSetTempo || update.Status == nil || update.Status.Tempo != 140 {
		t.Errorf("unexpected update: %+v", update)
	}
}
