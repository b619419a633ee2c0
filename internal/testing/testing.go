// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/smartlist/internal/models"
	"github.com/desertthunder/smartlist/internal/shared"
)

// MockArtistProvider is a test double for [services.ArtistProvider] backed by a fixed artist list.
type MockArtistProvider struct {
	Artists []models.Artist
	Err     error            // returned by FollowedArtists
	Fail    map[string]error // per-id errors returned by Artist

	mu      sync.Mutex
	lookups []string
}

func (m *MockArtistProvider) Name() string { return "mock" }

func (m *MockArtistProvider) FollowedArtists(context.Context) ([]models.Artist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Artist(nil), m.Artists...), nil
}

func (m *MockArtistProvider) Artist(_ context.Context, id string) (*models.Artist, error) {
	m.mu.Lock()
	m.lookups = append(m.lookups, id)
	m.mu.Unlock()

	if err := m.Fail[id]; err != nil {
		return nil, err
	}
	for _, a := range m.Artists {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, shared.ErrArtistNotFound
}

// Lookups returns the ids passed to Artist, in call order.
func (m *MockArtistProvider) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lookups...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

// NewStatusRoundTripper answers every request with status and a JSON body.
func NewStatusRoundTripper(status int, body string) *MockRoundTripper {
	return NewMockRoundTripper(&http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	resp := *m.response
	resp.Request = req
	return &resp, nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
