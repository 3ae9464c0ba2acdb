package tasks

import "plexsync/internal/models"

// Prune returns original with every request whose (title, artist) pair is in
// resolved removed, preserving the relative order of the rest. Pure and
// idempotent; the caller persists the result.
//
// Resolved holds requests that are durably in the playlist: entries already
// present at snapshot time plus those that passed match, confirmation, and a
// successful add. A declined or failed track stays in the backlog for the
// next run.
func Prune(original []models.TrackRequest, resolved map[models.TrackRequest]struct{}) []models.TrackRequest {
	remaining := make([]models.TrackRequest, 0, len(original))
	for _, req := range original {
		if _, ok := resolved[req]; ok {
			continue
		}
		remaining = append(remaining, req)
	}
	return remaining
}
