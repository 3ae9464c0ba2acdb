// Plex Media Server [MediaServer] implementation
//
// Talks to the Plex HTTP API with token authentication. Responses are JSON
// except /identity, which is XML only.
package services

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"plexsync/internal/models"
	"plexsync/internal/shared"
)

const (
	defaultTimeout  = 30 * time.Second
	userAgent       = "plexsync/1.0"
	plexClientID    = "plexsync-cli"
	searchLimit     = 30
	artistType      = "8" // Plex metadata type for artist entities
	sectionArtist   = "artist"
	playlistItemFmt = "server://%s/com.plexapp.plugins.library/library/metadata/%s"
)

// PlexService implements MediaServer against a Plex server.
type PlexService struct {
	baseURL           string
	token             string
	machineIdentifier string // fetched from /identity on first use
	musicSectionID    string // resolved lazily from /library/sections
	httpClient        *http.Client
	limiter           *rate.Limiter
	logger            *log.Logger
}

// NewPlexService creates a Plex API client for the given server address and
// token. A nil client gets a default with a request timeout.
func NewPlexService(baseURL, token string, client *http.Client, logger *log.Logger) *PlexService {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlexService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(5), 10),
		logger:     shared.WithLogger(logger, "service", "plex"),
	}
}

// Name returns the service name.
func (s *PlexService) Name() string {
	return "Plex"
}

func (s *PlexService) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", s.token)
	req.Header.Set("X-Plex-Client-Identifier", plexClientID)
	req.Header.Set("X-Plex-Product", "plexsync")
	req.Header.Set("X-Plex-Version", "1.0")
	req.Header.Set("User-Agent", userAgent)
}

// doRequest performs an authenticated, rate-limited HTTP request and returns the response body.
func (s *PlexService) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := s.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	s.logger.Debug("plex request", "method", method, "url", reqURL)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return body, nil
}

func (s *PlexService) parseContainer(body []byte) (*mediaContainer, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp.MediaContainer, nil
}

// FetchIdentity fetches and stores the server's machineIdentifier, which is
// required to build the canonical URIs playlist mutations use.
func (s *PlexService) FetchIdentity(ctx context.Context) error {
	body, err := s.doRequest(ctx, http.MethodGet, "/identity", nil)
	if err != nil {
		return err
	}

	var identity struct {
		XMLName           xml.Name `xml:"MediaContainer"`
		MachineIdentifier string   `xml:"machineIdentifier,attr"`
	}
	if err := xml.Unmarshal(body, &identity); err != nil {
		return fmt.Errorf("failed to parse identity: %w", err)
	}

	s.machineIdentifier = identity.MachineIdentifier
	return nil
}

// musicSection resolves (and caches) the first music library section key.
func (s *PlexService) musicSection(ctx context.Context) (string, error) {
	if s.musicSectionID != "" {
		return s.musicSectionID, nil
	}

	body, err := s.doRequest(ctx, http.MethodGet, "/library/sections", nil)
	if err != nil {
		return "", err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return "", err
	}

	for _, dir := range container.Directory {
		if dir.Type == sectionArtist {
			s.musicSectionID = dir.Key
			return dir.Key, nil
		}
	}

	return "", shared.ErrSectionNotFound
}

// SearchArtists queries the music section for artist entities matching the given name.
//
// Plex treats the title filter as a case-insensitive substring match.
func (s *PlexService) SearchArtists(ctx context.Context, name string) ([]models.Artist, error) {
	section, err := s.musicSection(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("type", artistType)
	query.Set("title", name)

	path := fmt.Sprintf("/library/sections/%s/all", section)
	body, err := s.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return nil, err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(container.Metadata))
	for _, m := range container.Metadata {
		artists = append(artists, mapArtist(m))
	}
	return artists, nil
}

// ArtistTracks enumerates every track under an artist entity.
func (s *PlexService) ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error) {
	path := fmt.Sprintf("/library/metadata/%s/allLeaves", artistID)
	body, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return nil, err
	}

	return mapTracks(container.Metadata), nil
}

// SearchTracks performs a free-text search and keeps only track results.
func (s *PlexService) SearchTracks(ctx context.Context, query string) ([]models.Track, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	body, err := s.doRequest(ctx, http.MethodGet, "/search", params)
	if err != nil {
		return nil, err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	for _, m := range container.Metadata {
		if m.Type == "track" {
			tracks = append(tracks, mapTrack(m))
		}
	}
	return tracks, nil
}

// ListPlaylists returns every playlist on the server, optionally filtered by
// playlist type.
func (s *PlexService) ListPlaylists(ctx context.Context, playlistType string) ([]models.Playlist, error) {
	query := url.Values{}
	if playlistType != "" {
		query.Set("playlistType", playlistType)
	}

	body, err := s.doRequest(ctx, http.MethodGet, "/playlists", query)
	if err != nil {
		return nil, err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(container.Metadata))
	for _, m := range container.Metadata {
		playlists = append(playlists, models.Playlist{
			ID:         m.RatingKey,
			Name:       m.Title,
			Type:       m.PlaylistType,
			TrackCount: m.LeafCount,
		})
	}
	return playlists, nil
}

// GetPlaylist looks up a playlist by exact name and type.
//
// The returned snapshot has metadata only; callers fill the identity key set
// from PlaylistItems. Returns shared.ErrPlaylistNotFound when absent —
// playlists are never created here.
func (s *PlexService) GetPlaylist(ctx context.Context, name, playlistType string) (*models.Playlist, error) {
	query := url.Values{}
	if playlistType != "" {
		query.Set("playlistType", playlistType)
	}

	body, err := s.doRequest(ctx, http.MethodGet, "/playlists", query)
	if err != nil {
		return nil, err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return nil, err
	}

	for _, m := range container.Metadata {
		if m.Title == name {
			return &models.Playlist{
				ID:         m.RatingKey,
				Name:       m.Title,
				Type:       m.PlaylistType,
				TrackCount: m.LeafCount,
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

// PlaylistItems returns the current entries of a playlist.
func (s *PlexService) PlaylistItems(ctx context.Context, playlistID string) ([]models.Track, error) {
	path := fmt.Sprintf("/playlists/%s/items", playlistID)
	body, err := s.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	container, err := s.parseContainer(body)
	if err != nil {
		return nil, err
	}

	return mapTracks(container.Metadata), nil
}

// AddToPlaylist adds the identified tracks to a playlist in one call.
//
// Plex addresses items with a canonical server URI, so the machine identifier
// is fetched on first use. Multiple IDs are comma-joined into a single URI.
func (s *PlexService) AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	if s.machineIdentifier == "" {
		if err := s.FetchIdentity(ctx); err != nil {
			return fmt.Errorf("failed to fetch server identity: %w", err)
		}
	}

	uri := fmt.Sprintf(playlistItemFmt, s.machineIdentifier, strings.Join(trackIDs, ","))
	query := url.Values{}
	query.Set("uri", uri)

	path := fmt.Sprintf("/playlists/%s/items", playlistID)
	_, err := s.doRequest(ctx, http.MethodPut, path, query)
	return err
}
