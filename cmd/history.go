package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"plexsync/internal/shared"
)

// History shows recent reconciliation runs from the history database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	repo, db := r.openRunRepo()
	if repo == nil {
		return fmt.Errorf("%w: run history requires database.path in config.toml", shared.ErrMissingConfig)
	}
	defer db.Close()

	runs, err := repo.Recent(int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load run history: %w", err)
	}

	if len(runs) == 0 {
		r.writePlain("No runs recorded yet\n")
		return nil
	}

	r.writePlainHeader("Recent runs")
	for _, run := range runs {
		r.writePlain("#%d %s at %s\n", run.Sequence(), run.PlaylistName(), run.StartedAt().Format("2006-01-02 15:04"))
		r.writePlain("   backlog %d | present %d | added %d | declined %d | failed %d | unmatched %d\n",
			run.BacklogTotal(), run.AlreadyPresent(), run.Added(), run.Declined(), run.Failed(), run.Unmatched())
	}

	return nil
}

// historyCommand handles run history inspection
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent reconciliation runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to show",
				Value:   10,
			},
		},
		Action: r.History,
	}
}
