package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"plexsync/internal/backlog"
	"plexsync/internal/models"
	"plexsync/internal/repositories"
	"plexsync/internal/shared"
	"plexsync/internal/tasks"
	"plexsync/internal/ui"
)

// audioPlaylist is the Plex playlist type sync operates on.
const audioPlaylist = "audio"

// SyncRun reconciles every backlog CSV against its playlist.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireServer(); err != nil {
		return err
	}
	if t := cmd.Float("threshold"); t < 0 || t > 1 {
		return fmt.Errorf("%w: threshold must be between 0 and 1, got %v", shared.ErrInvalidFlag, t)
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Directories.CSV
	}
	only := cmd.String("playlist")

	backlogs, err := backlog.LoadDir(dir)
	if err != nil {
		return err
	}
	if len(backlogs) == 0 {
		r.writePlain("No backlog files found in %s\n", dir)
		return nil
	}

	engine := r.engine
	if cmd.Float("threshold") > 0 || cmd.Bool("batch") {
		threshold := r.config.Matching.Threshold
		if cmd.Float("threshold") > 0 {
			threshold = cmd.Float("threshold")
		}
		mode := r.config.Matching.ConfirmMode
		if cmd.Bool("batch") {
			mode = shared.ConfirmPerBatch
		}
		matcher := tasks.NewMatcher(r.server, threshold, r.logger)
		confirmer := tasks.NewConsoleConfirmer(r.input, r.output)
		engine = tasks.NewSyncEngine(r.server, matcher, confirmer, mode, r.logger)
	}

	repo, db := r.openRunRepo()
	if db != nil {
		defer db.Close()
	}

	for _, b := range backlogs {
		if only != "" && b.PlaylistName != only {
			continue
		}

		r.logger.Info("reconciling backlog", "playlist", b.PlaylistName, "tracks", len(b.Requests))

		result, err := r.runOne(ctx, engine, b)
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			r.writePlain("%s Playlist %q not found on the server, skipping\n", ui.Warn("!"), b.PlaylistName)
			continue
		}
		if err != nil {
			// only a config load failure aborts the run; a broken playlist
			// degrades to a skip and the rest proceed
			r.logger.Error("failed to reconcile playlist", "playlist", b.PlaylistName, "err", err)
			r.writePlain("%s Failed to reconcile %q, skipping: %v\n", ui.Err("✗"), b.PlaylistName, err)
			continue
		}

		// one rewrite per playlist, after the pass completes
		if err := backlog.Write(b.Path, result.Remaining); err != nil {
			return fmt.Errorf("failed to rewrite backlog %s: %w", b.Path, err)
		}

		r.writePlain("\n%s", ui.RunSummary(result))
		r.probeLocal(result.Reconciled.Unmatched)
		r.recordRun(repo, b, result)
	}

	return nil
}

// runOne drives the engine for a single backlog with progress streaming.
func (r *Runner) runOne(ctx context.Context, engine *tasks.SyncEngine, b backlog.Backlog) (*tasks.PlaylistRunResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Snapshot:
				r.writePlain("%s\n", update.Message)
			case tasks.MatchTracks:
				if update.Step == 0 {
					r.writePlain("\n%s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.ConfirmTracks, tasks.ApplyAdditions, tasks.PruneBacklog:
				r.writePlain("\n%s\n", update.Message)
			}
		}
	}()

	result, err := engine.RunPlaylist(ctx, b.PlaylistName, audioPlaylist, b.Requests, progressCh)
	close(progressCh)
	<-done

	return result, err
}

// probeLocal checks unmatched tracks against local music filenames. Purely
// informational; nothing is uploaded or modified.
func (r *Runner) probeLocal(unmatched []models.TrackRequest) {
	musicDir := r.config.Directories.Music
	if musicDir == "" || len(unmatched) == 0 {
		return
	}

	for _, req := range unmatched {
		paths, err := backlog.LocalMatches(musicDir, req.Artist, req.Title)
		if err != nil {
			r.logger.Warn("local music probe failed", "dir", musicDir, "err", err)
			return
		}
		for _, p := range paths {
			r.writePlain("  %s %s - %s exists locally: %s\n", ui.Help("i"), req.Artist, req.Title, p)
		}
	}
}

// openRunRepo opens the run-history database, returning a nil repository when
// history is unavailable. Sync proceeds without history rather than failing.
func (r *Runner) openRunRepo() (*repositories.RunRepository, *sql.DB) {
	if r.config.Database.Path == "" {
		return nil, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("run history disabled, database unavailable", "path", r.config.Database.Path, "err", err)
		return nil, nil
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run history disabled, migrations failed", "err", err)
		db.Close()
		return nil, nil
	}

	return repositories.NewRunRepository(db), db
}

// recordRun persists one completed pass to the run history.
func (r *Runner) recordRun(repo *repositories.RunRepository, b backlog.Backlog, result *tasks.PlaylistRunResult) {
	if repo == nil {
		return
	}

	run := models.NewSyncRun(b.PlaylistName)
	run.SetCounts(
		len(b.Requests),
		len(result.Reconciled.AlreadyPresent),
		len(result.Added),
		len(result.Declined),
		len(result.Failures),
		len(result.Reconciled.Unmatched),
	)
	run.Complete()

	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run history", "playlist", b.PlaylistName, "err", err)
	}
}

// SyncPreview classifies every backlog without prompting, mutating, or pruning.
func (r *Runner) SyncPreview(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireServer(); err != nil {
		return err
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Directories.CSV
	}
	only := cmd.String("playlist")

	backlogs, err := backlog.LoadDir(dir)
	if err != nil {
		return err
	}

	for _, b := range backlogs {
		if only != "" && b.PlaylistName != only {
			continue
		}

		playlist, err := r.engine.Snapshot(ctx, b.PlaylistName, audioPlaylist)
		if errors.Is(err, shared.ErrPlaylistNotFound) {
			r.writePlain("%s Playlist %q not found on the server, skipping\n", ui.Warn("!"), b.PlaylistName)
			continue
		}
		if err != nil {
			r.logger.Error("failed to snapshot playlist", "playlist", b.PlaylistName, "err", err)
			r.writePlain("%s Failed to fetch %q, skipping: %v\n", ui.Err("✗"), b.PlaylistName, err)
			continue
		}

		result := r.engine.Reconcile(ctx, b.Requests, playlist, nil)

		r.writePlainHeader(fmt.Sprintf("%s (%d in backlog)", b.PlaylistName, len(b.Requests)))
		r.writePlain("Already present: %d\n", len(result.AlreadyPresent))
		r.writePlain("Would prompt for: %d\n", len(result.Matched))
		for _, m := range result.Matched {
			r.writePlain("  %s\n", ui.MatchLine(m))
		}
		r.writePlain("Unmatched: %d\n", len(result.Unmatched))
		for _, req := range result.Unmatched {
			r.writePlain("  %s - %s\n", req.Artist, req.Title)
		}
	}

	return nil
}

// syncCommand handles backlog reconciliation operations
func syncCommand(r *Runner) *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Backlog CSV directory (defaults to directories.csv)",
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Only process the named playlist",
			},
		}
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Reconcile backlog CSVs against Plex playlists",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Match, confirm, add, and prune every backlog",
				Flags: append(flags(),
					&cli.FloatFlag{
						Name:  "threshold",
						Usage: "Override the minimum similarity score",
					},
					&cli.BoolFlag{
						Name:  "batch",
						Usage: "Confirm the whole playlist with one prompt",
					},
				),
				Action: r.SyncRun,
			},
			{
				Name:   "preview",
				Usage:  "Show what a run would do without prompting or mutating",
				Flags:  flags(),
				Action: r.SyncPreview,
			},
		},
	}
}
