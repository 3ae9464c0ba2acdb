// package services defines interface MediaServer for interacting with the Plex HTTP API
package services

import (
	"context"

	"plexsync/internal/models"
)

// MediaServer defines the operations the reconciliation engine needs from a
// media server: library search for the matcher, and playlist read/mutate
// access for snapshots and confirmed additions.
type MediaServer interface {
	// SearchArtists queries the music library for artist entities matching the given name.
	SearchArtists(ctx context.Context, name string) ([]models.Artist, error)

	// ArtistTracks enumerates every track belonging to an artist entity.
	ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error)

	// SearchTracks performs a free-text track search across the whole library.
	SearchTracks(ctx context.Context, query string) ([]models.Track, error)

	// ListPlaylists returns every playlist on the server, optionally filtered by type.
	ListPlaylists(ctx context.Context, playlistType string) ([]models.Playlist, error)

	// GetPlaylist looks up a playlist by exact name and type.
	// Returns shared.ErrPlaylistNotFound if no playlist matches; it never creates one.
	GetPlaylist(ctx context.Context, name, playlistType string) (*models.Playlist, error)

	// PlaylistItems returns the current entries of a playlist.
	PlaylistItems(ctx context.Context, playlistID string) ([]models.Track, error)

	// AddToPlaylist adds the identified tracks to a playlist in one call.
	AddToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error

	// Name returns the name of the media server (e.g., "Plex")
	Name() string
}
