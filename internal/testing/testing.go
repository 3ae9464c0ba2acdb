// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"plexsync/internal/models"
	"plexsync/internal/shared"
)

// MockServer is a configurable test double for [services.MediaServer].
// Call counters record how often each library operation was invoked.
type MockServer struct {
	Artists       []models.Artist
	Tracks        []models.Track
	SearchResults []models.Track
	Playlist      *models.Playlist
	AllPlaylists  []models.Playlist
	Items         []models.Track
	// PlaylistsByName overrides Playlist for per-name lookups; names not in
	// the map are not found.
	PlaylistsByName map[string]*models.Playlist
	// ItemsErrFor fails PlaylistItems for specific playlist IDs.
	ItemsErrFor map[string]error

	SearchArtistsErr error
	ArtistTracksErr  error
	SearchTracksErr  error
	GetPlaylistErr   error
	PlaylistItemsErr error
	AddErr           error
	// FailIDs lists track IDs whose individual add should fail.
	FailIDs map[string]bool

	SearchArtistsCalls int
	ArtistTracksCalls  int
	SearchTracksCalls  int
	AddCalls           [][]string
}

func (m *MockServer) SearchArtists(ctx context.Context, name string) ([]models.Artist, error) {
	m.SearchArtistsCalls++
	return m.Artists, m.SearchArtistsErr
}

func (m *MockServer) ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	m.ArtistTracksCalls++
	return m.Tracks, m.ArtistTracksErr
}

func (m *MockServer) SearchTracks(ctx context.Context, query string) ([]models.Track, error) {
	m.SearchTracksCalls++
	return m.SearchResults, m.SearchTracksErr
}

func (m *MockServer) ListPlaylists(ctx context.Context, playlistType string) ([]models.Playlist, error) {
	return m.AllPlaylists, nil
}

func (m *MockServer) GetPlaylist(ctx context.Context, name, playlistType string) (*models.Playlist, error) {
	if m.GetPlaylistErr != nil {
		return nil, m.GetPlaylistErr
	}
	if m.PlaylistsByName != nil {
		if p, ok := m.PlaylistsByName[name]; ok {
			return p, nil
		}
		return nil, shared.ErrPlaylistNotFound
	}
	if m.Playlist == nil {
		return nil, shared.ErrPlaylistNotFound
	}
	return m.Playlist, nil
}

func (m *MockServer) PlaylistItems(ctx context.Context, playlistID string) ([]models.Track, error) {
	if err, ok := m.ItemsErrFor[playlistID]; ok {
		return nil, err
	}
	return m.Items, m.PlaylistItemsErr
}

func (m *MockServer) AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	m.AddCalls = append(m.AddCalls, trackIDs)
	if m.AddErr != nil {
		// A batch containing a failing ID fails whole; individual retries
		// succeed unless the ID itself is marked.
		for _, id := range trackIDs {
			if m.FailIDs[id] {
				return m.AddErr
			}
		}
		if len(m.FailIDs) == 0 {
			return m.AddErr
		}
	}
	return nil
}

func (m *MockServer) Name() string { return "mock" }

// ScriptedConfirmer answers prompts from a fixed script, false once exhausted.
type ScriptedConfirmer struct {
	Answers []bool
	Prompts []string
	next    int
}

func (c *ScriptedConfirmer) Confirm(prompt string) bool {
	c.Prompts = append(c.Prompts, prompt)
	if c.next >= len(c.Answers) {
		return false
	}
	answer := c.Answers[c.next]
	c.next++
	return answer
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
