// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/playlistbridge/playlistbridge/internal/services"
)

// MockPlaylistClient is a configurable test double for [services.PlaylistClient].
//
// Each operation can be overridden with a function field; unset operations
// return empty results. Added track IDs are recorded for assertions.
type MockPlaylistClient struct {
	PlatformName string

	GetPlaylistFunc       func(ctx context.Context, userID, playlistID string) (*services.Playlist, error)
	GetPlaylistTracksFunc func(ctx context.Context, userID, playlistID string) ([]services.Track, error)
	CreatePlaylistFunc    func(ctx context.Context, userID, name, description string) (*services.Playlist, error)
	SearchTrackFunc       func(ctx context.Context, userID, title, artist string) (*services.Track, bool, error)
	AddTrackFunc          func(ctx context.Context, userID, playlistID, trackID string) error
	ListPlaylistsFunc     func(ctx context.Context, userID string) ([]services.Playlist, error)

	mu          sync.Mutex
	addedTracks []string
	searchCalls int
}

func (m *MockPlaylistClient) Name() string {
	if m.PlatformName == "" {
		return "Mock"
	}
	return m.PlatformName
}

func (m *MockPlaylistClient) GetPlaylist(ctx context.Context, userID, playlistID string) (*services.Playlist, error) {
	if m.GetPlaylistFunc != nil {
		return m.GetPlaylistFunc(ctx, userID, playlistID)
	}
	return &services.Playlist{ID: playlistID, Name: "Mock Playlist"}, nil
}

func (m *MockPlaylistClient) GetPlaylistTracks(ctx context.Context, userID, playlistID string) ([]services.Track, error) {
	if m.GetPlaylistTracksFunc != nil {
		return m.GetPlaylistTracksFunc(ctx, userID, playlistID)
	}
	return nil, nil
}

func (m *MockPlaylistClient) CreatePlaylist(ctx context.Context, userID, name, description string) (*services.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, userID, name, description)
	}
	return &services.Playlist{ID: "mock-created", Name: name, Description: description}, nil
}

func (m *MockPlaylistClient) SearchTrack(ctx context.Context, userID, title, artist string) (*services.Track, bool, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()

	if m.SearchTrackFunc != nil {
		return m.SearchTrackFunc(ctx, userID, title, artist)
	}
	return nil, false, nil
}

func (m *MockPlaylistClient) AddTrackToPlaylist(ctx context.Context, userID, playlistID, trackID string) error {
	if m.AddTrackFunc != nil {
		if err := m.AddTrackFunc(ctx, userID, playlistID, trackID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.addedTracks = append(m.addedTracks, trackID)
	m.mu.Unlock()
	return nil
}

func (m *MockPlaylistClient) ListPlaylists(ctx context.Context, userID string) ([]services.Playlist, error) {
	if m.ListPlaylistsFunc != nil {
		return m.ListPlaylistsFunc(ctx, userID)
	}
	return nil, nil
}

// AddedTracks returns the track IDs added so far.
func (m *MockPlaylistClient) AddedTracks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.addedTracks...)
}

// SearchCalls returns the number of SearchTrack invocations.
func (m *MockPlaylistClient) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCalls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
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
