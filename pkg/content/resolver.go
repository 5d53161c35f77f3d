// ABOUTME: Content resolver with process-lifetime cache
// ABOUTME: Fetches, verifies, decodes and caches audio by content id
package content

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-timeline/pkg/audio"
	"golang.org/x/sync/singleflight"
)

// Decoder decodes a complete container; *decode.Registry satisfies it
type Decoder interface {
	Decode(data []byte) (*audio.Decoded, error)
}

// Stats is a snapshot of resolver activity
type Stats struct {
	Cached  int    `json:"cached"`
	Hits    uint64 `json:"hits"`
	Fetches uint64 `json:"fetches"`
	Errors  uint64 `json:"errors"`
}

// Resolver maps content ids to shared decoded audio
type Resolver struct {
	store      Store
	decoder    Decoder
	sampleRate int
	debug      bool

	mu    sync.RWMutex
	cache map[string]*audio.Decoded
	group singleflight.Group

	hits    atomic.Uint64
	fetches atomic.Uint64
	errors  atomic.Uint64
}

// NewResolver creates a resolver that accepts only audio at sampleRate
func NewResolver(store Store, decoder Decoder, sampleRate int) *Resolver {
	return &Resolver{
		store:      store,
		decoder:    decoder,
		sampleRate: sampleRate,
		cache:      make(map[string]*audio.Decoded),
	}
}

// SetDebug enables per-resolve logging
func (r *Resolver) SetDebug(debug bool) {
	r.debug = debug
}

// Resolve returns the decoded audio for id, fetching and decoding it on first use.
// Every caller resolving the same id receives the same *audio.Decoded.
func (r *Resolver) Resolve(ctx context.Context, id string) (*audio.Decoded, error) {
	if id == "" {
		r.errors.Add(1)
		return nil, &Error{Kind: KindNotFound, ID: id, Err: ErrEmptyID}
	}

	if d, ok := r.Cached(id); ok {
		r.hits.Add(1)
		return d, nil
	}

	// The shared load must not inherit one caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(id, func() (interface{}, error) {
		// Another caller may have filled the cache while we waited for the group.
		if d, ok := r.Cached(id); ok {
			return d, nil
		}
		d, err := r.load(loadCtx, id)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[id] = d
		r.mu.Unlock()

		if r.debug {
			log.Printf("Resolved content %s: %d frames, %s", id, d.Frames(), d.Format())
		}
		return d, nil
	})

	var v interface{}
	select {
	case res := <-ch:
		if res.Err != nil {
			r.errors.Add(1)
			return nil, res.Err
		}
		v = res.Val
	case <-ctx.Done():
		r.errors.Add(1)
		return nil, &Error{Kind: KindFetch, ID: id, Err: ctx.Err()}
	}
	return v.(*audio.Decoded), nil
}

func (r *Resolver) load(ctx context.Context, id string) (*audio.Decoded, error) {
	r.fetches.Add(1)
	data, err := r.store.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &Error{Kind: KindNotFound, ID: id, Err: err}
		}
		return nil, &Error{Kind: KindFetch, ID: id, Err: err}
	}

	if isDigest(id) {
		if got := Digest(data); got != id {
			return nil, &Error{Kind: KindFetch, ID: id, Err: fmt.Errorf("%w: got %s", ErrIntegrity, got)}
		}
	}

	d, err := r.decoder.Decode(data)
	if err != nil {
		return nil, &Error{Kind: KindDecode, ID: id, Err: err}
	}

	// Resampling would go here; for now the session rate is mandatory.
	if d.SampleRate() != r.sampleRate {
		return nil, &Error{
			Kind: KindSampleRateMismatch,
			ID:   id,
			Err:  fmt.Errorf("content is %dHz, session is %dHz", d.SampleRate(), r.sampleRate),
		}
	}
	return d, nil
}

// Cached returns the cached audio for id without fetching
func (r *Resolver) Cached(id string) (*audio.Decoded, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.cache[id]
	return d, ok
}

// SampleRate returns the session sample rate the resolver enforces
func (r *Resolver) SampleRate() int {
	return r.sampleRate
}

// Stats returns a snapshot of cache activity
func (r *Resolver) Stats() Stats {
	r.mu.RLock()
	cached := len(r.cache)
	r.mu.RUnlock()

	return Stats{
		Cached:  cached,
		Hits:    r.hits.Load(),
		Fetches: r.fetches.Load(),
		Errors:  r.errors.Load(),
	}
}
