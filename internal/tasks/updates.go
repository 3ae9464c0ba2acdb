package tasks

import (
	"fmt"

	"plexsync/internal/models"
)

// ProgressUpdate represents a progress event during a reconciliation pass.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Snapshot Phase = iota
	MatchTracks
	ConfirmTracks
	ApplyAdditions
	PruneBacklog
)

func (p Phase) String() string {
	switch p {
	case Snapshot:
		return "snapshot"
	case MatchTracks:
		return "match_tracks"
	case ConfirmTracks:
		return "confirm_tracks"
	case ApplyAdditions:
		return "apply_additions"
	case PruneBacklog:
		return "prune_backlog"
	default:
		return ""
	}
}

func snapshotUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Snapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist snapshot (%s)...", name),
	}
}

func snapshotDoneUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Snapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks)", pl.Name, pl.TrackCount),
		Data:    pl,
	}
}

func matchTrackUpdate(step, total int, req models.TrackRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, req.Artist, req.Title),
	}
}

func matchingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Matching %d backlog tracks against the library...", total),
	}
}

func confirmUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConfirmTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Awaiting confirmation for %d matched tracks...", count),
	}
}

func applyUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyAdditions,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d confirmed tracks to the playlist...", count),
	}
}

func pruneUpdate(removed, remaining int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PruneBacklog,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Pruned %d resolved tracks, %d remain in the backlog", removed, remaining),
	}
}
