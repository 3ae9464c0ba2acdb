package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"plexsync/internal/backlog"
)

// BacklogList shows every backlog CSV and its pending tracks.
func (r *Runner) BacklogList(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Directories.CSV
	}

	backlogs, err := backlog.LoadDir(dir)
	if err != nil {
		return err
	}

	if only := cmd.String("playlist"); only != "" {
		filtered := backlogs[:0]
		for _, b := range backlogs {
			if b.PlaylistName == only {
				filtered = append(filtered, b)
			}
		}
		backlogs = filtered
	}

	if cmd.Bool("json") {
		type backlogOut struct {
			Playlist string `json:"playlist"`
			Path     string `json:"path"`
			Pending  int    `json:"pending"`
		}
		out := make([]backlogOut, len(backlogs))
		for i, b := range backlogs {
			out[i] = backlogOut{Playlist: b.PlaylistName, Path: b.Path, Pending: len(b.Requests)}
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("Backlogs in %s", dir))
	total := 0
	for _, b := range backlogs {
		r.writePlain("%s: %d pending (%s)\n", b.PlaylistName, len(b.Requests), b.Path)
		if cmd.Bool("tracks") {
			for _, req := range b.Requests {
				r.writePlain("  %s - %s\n", req.Artist, req.Title)
			}
		}
		total += len(b.Requests)
	}
	r.writePlain("\nTotal: %d tracks across %d backlogs\n", total, len(backlogs))

	return nil
}

// backlogCommand handles backlog CSV inspection
func backlogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backlog",
		Usage: "Inspect backlog CSV files",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List backlog files and pending track counts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Backlog CSV directory (defaults to directories.csv)",
					},
					&cli.StringFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Only show the named playlist's backlog",
					},
					&cli.BoolFlag{
						Name:  "tracks",
						Usage: "Show every pending track",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.BacklogList,
			},
		},
	}
}
