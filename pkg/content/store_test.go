// ABOUTME: Tests for filesystem and HTTP content stores
// ABOUTME: Uses temp directories and httptest servers
package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-timeline/internal/audiotest"
	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio/decode"
)

func TestFSStore(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}

	data := []byte("hello content")
	id, err := store.Put(data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if id != Digest(data) {
		t.Errorf("Put() id = %s, want digest", id)
	}

	// Second put of the same bytes is a no-op
	if again, err := store.Put(data); err != nil || again != id {
		t.Errorf("repeat Put() = %s, %v", again, err)
	}

	got, err := store.Fetch(context.Background(), id)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Fetch() = %q, want %q", got, data)
	}

	if _, err := store.Fetch(context.Background(), Digest([]byte("absent"))); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := store.Fetch(context.Background(), "../etc/passwd"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(traversal) error = %v, want invalid id", err)
	}
}

func TestNewFSStoreEmptyDir(t *testing.T) {
	if _, err := NewFSStore(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

func newContentServer(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/content/")
		if id == "broken" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		data, ok := objects[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStore(t *testing.T) {
	wav := audiotest.WAV(t, testRate, 2, 960, audiotest.Sine(testRate, 880, 0.25))
	id := Digest(wav)
	srv := newContentServer(t, map[string][]byte{id: wav})

	store, err := NewHTTPStore(srv.URL+"/", 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPStore() error = %v", err)
	}

	got, err := store.Fetch(context.Background(), id)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != len(wav) {
		t.Errorf("Fetch() returned %d bytes, want %d", len(got), len(wav))
	}

	if _, err := store.Fetch(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}

	r := NewResolver(store, decode.DefaultRegistry(), testRate)
	d, err := r.Resolve(context.Background(), id)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if d.Frames() != 960 {
		t.Errorf("frames = %d, want 960", d.Frames())
	}

	if _, err := r.Resolve(context.Background(), "broken"); !errors.Is(err, ErrFetch) {
		t.Errorf("Resolve(broken) error = %v, want ErrFetch", err)
	}
}

func TestNewHTTPStoreInvalidURL(t *testing.T) {
	tests := []string{"ftp://example.com", "not a url at all", ""}
	for _, u := range tests {
		if _, err := NewHTTPStore(u, time.Second); err == nil {
			t.Errorf("NewHTTPStore(%q) expected error", u)
		}
	}
}
