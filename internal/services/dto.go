package services

import "plexsync/internal/models"

// apiResponse is the JSON envelope every Plex endpoint returns.
type apiResponse struct {
	MediaContainer mediaContainer `json:"MediaContainer"`
}

type mediaContainer struct {
	Size      int         `json:"size"`
	TotalSize int         `json:"totalSize"`
	Metadata  []metadata  `json:"Metadata"`
	Directory []directory `json:"Directory"`
}

// metadata covers the fields plexsync reads from artist, track, and playlist
// entries; Plex returns many more.
type metadata struct {
	RatingKey        string `json:"ratingKey"`
	Key              string `json:"key"`
	Type             string `json:"type"`
	Title            string `json:"title"`
	ParentTitle      string `json:"parentTitle"`      // album for tracks
	GrandparentTitle string `json:"grandparentTitle"` // artist for tracks
	Duration         int    `json:"duration"`         // milliseconds
	PlaylistType     string `json:"playlistType"`
	LeafCount        int    `json:"leafCount"`
}

// directory describes a library section in /library/sections responses.
type directory struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

func mapArtist(m metadata) models.Artist {
	return models.Artist{ID: m.RatingKey, Name: m.Title}
}

func mapTrack(m metadata) models.Track {
	return models.Track{
		ID:       m.RatingKey,
		Title:    m.Title,
		Artist:   m.GrandparentTitle,
		Album:    m.ParentTitle,
		Duration: m.Duration / 1000,
	}
}

func mapTracks(ms []metadata) []models.Track {
	tracks := make([]models.Track, 0, len(ms))
	for _, m := range ms {
		tracks = append(tracks, mapTrack(m))
	}
	return tracks
}
