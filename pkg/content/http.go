// ABOUTME: HTTP content store client
// ABOUTME: Fetches content objects from a remote store over GET {base}/content/{id}
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxObjectBytes bounds a single fetched object
const maxObjectBytes = 512 << 20

// HTTPStore fetches content from a remote content-addressed store
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStore creates a store client for baseURL.
// A zero timeout leaves requests bounded only by their context.
func NewHTTPStore(baseURL string, timeout time.Duration) (*HTTPStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid store url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid store url scheme: %q", u.Scheme)
	}

	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Fetch implements Store
func (s *HTTPStore) Fetch(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	endpoint := s.baseURL + "/content/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxObjectBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxObjectBytes {
		return nil, fmt.Errorf("object exceeds %d bytes", maxObjectBytes)
	}
	return data, nil
}
