// ABOUTME: Filesystem content store
// ABOUTME: Reads and writes content objects as files named by id
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps one file per content id under a directory
type FSStore struct {
	dir string
}

// NewFSStore creates a store rooted at dir, creating it if needed
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("content store directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Dir returns the store root
func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) path(id string) (string, error) {
	if id == "" {
		return "", ErrEmptyID
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid content id %q", id)
	}
	return filepath.Join(s.dir, id), nil
}

// Fetch implements Store
func (s *FSStore) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// Put stores data under its digest and returns the id.
// The file is written to a temporary name and renamed into place.
func (s *FSStore) Put(data []byte) (string, error) {
	id := Digest(data)
	p, err := s.path(id)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(p); err == nil {
		return id, nil
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("failed to store content: %w", err)
	}
	return id, nil
}
