package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"plexsync/internal/shared"
)

// PlexPlaylists lists every playlist on the server.
func (r *Runner) PlexPlaylists(ctx context.Context, cmd *cli.Command) error {
	server, err := r.requireServer()
	if err != nil {
		return err
	}

	playlists, err := server.ListPlaylists(ctx, cmd.String("type"))
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		type playlistOut struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			Type       string `json:"type"`
			TrackCount int    `json:"track_count"`
		}
		out := make([]playlistOut, len(playlists))
		for i, p := range playlists {
			out[i] = playlistOut{ID: p.ID, Name: p.Name, Type: p.Type, TrackCount: p.TrackCount}
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists on %s", server.Name()))
	for _, p := range playlists {
		r.writePlain("%s (%d tracks) [%s]\n", p.Name, p.TrackCount, p.ID)
	}
	r.writePlain("\nTotal: %d playlists\n", len(playlists))

	return nil
}

// PlexSearch runs a free-text track search against the library.
func (r *Runner) PlexSearch(ctx context.Context, cmd *cli.Command) error {
	server, err := r.requireServer()
	if err != nil {
		return err
	}

	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("%w: search query required", shared.ErrInvalidArgument)
	}

	tracks, err := server.SearchTracks(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(tracks) == 0 {
		r.writePlain("No tracks found for %q\n", query)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q", query))
	for i, t := range tracks {
		r.writePlain("%d. %s - %s", i+1, t.Artist, t.Title)
		if t.Album != "" {
			r.writePlain(" (%s)", t.Album)
		}
		r.writePlain("\n")
	}

	return nil
}

// plexCommand handles direct Plex server inspection
func plexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "plex",
		Usage: "Inspect the Plex server directly",
		Commands: []*cli.Command{
			{
				Name:  "playlists",
				Usage: "List playlists on the server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by playlist type (e.g. audio)",
						Value: "audio",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.PlexPlaylists,
			},
			{
				Name:      "search",
				Usage:     "Free-text track search across the library",
				ArgsUsage: "<query>",
				Action:    r.PlexSearch,
			},
		},
	}
}
