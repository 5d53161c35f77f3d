// ABOUTME: Content store interface and in-memory implementation
// ABOUTME: Stores fetch raw container bytes by content identifier
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Store fetches encoded bytes by content identifier.
// Implementations return ErrNotFound (possibly wrapped) for unknown ids.
type Store interface {
	Fetch(ctx context.Context, id string) ([]byte, error)
}

// Digest returns the content identifier for data: its SHA-256 in lowercase hex
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// isDigest reports whether id has the shape of a SHA-256 hex digest
func isDigest(id string) bool {
	if len(id) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}

// MemStore is an in-memory Store
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	fetches map[string]int
}

// NewMemStore creates an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
		fetches: make(map[string]int),
	}
}

// Put stores data under its digest and returns the id
func (s *MemStore) Put(data []byte) string {
	id := Digest(data)
	s.PutAs(id, data)
	return id
}

// PutAs stores data under an arbitrary id
func (s *MemStore) PutAs(id string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[id] = data
}

// Fetch implements Store
func (s *MemStore) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetches[id]++
	data, ok := s.objects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// Fetches returns how many times id has been fetched
func (s *MemStore) Fetches(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fetches[id]
}
