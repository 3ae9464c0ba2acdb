package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"plexsync/internal/models"
	"plexsync/internal/services"
	"plexsync/internal/shared"
)

// Match pairs a backlog request with the single best library candidate found for it.
type Match struct {
	Request   models.TrackRequest
	Candidate models.Track
	Score     float64
}

// AddFailure records a confirmed candidate that could not be added.
type AddFailure struct {
	Match
	Err error
}

// ReconcileResult partitions one backlog: the three buckets are disjoint and
// together cover every request.
type ReconcileResult struct {
	AlreadyPresent []models.TrackRequest
	Matched        []Match
	Unmatched      []models.TrackRequest
}

// Total returns the number of classified requests.
func (r *ReconcileResult) Total() int {
	return len(r.AlreadyPresent) + len(r.Matched) + len(r.Unmatched)
}

// PlaylistRunResult contains all data from one playlist's reconciliation pass.
type PlaylistRunResult struct {
	Playlist   *models.Playlist      // Snapshot the pass ran against
	Reconciled ReconcileResult       // Bucket classification of the backlog
	Confirmed  []Match               // Matches the user approved
	Declined   []Match               // Matches the user rejected
	Added      []Match               // Confirmed matches durably added
	Failures   []AddFailure          // Confirmed matches that failed to add
	Remaining  []models.TrackRequest // Pruned backlog for persistence
}

// SyncEngine drives one playlist's backlog through match, confirmation,
// mutation, and pruning. Processing is strictly sequential; every library
// call and every prompt is a blocking suspension point, so prompts reach the
// user in backlog order and the snapshot stays valid for the whole pass.
type SyncEngine struct {
	server      services.MediaServer
	matcher     *Matcher
	confirmer   Confirmer
	confirmMode string
	logger      *log.Logger
}

// NewSyncEngine creates a SyncEngine with the provided collaborators.
// confirmMode is shared.ConfirmPerTrack or shared.ConfirmPerBatch.
func NewSyncEngine(server services.MediaServer, matcher *Matcher, confirmer Confirmer, confirmMode string, logger *log.Logger) *SyncEngine {
	if confirmMode == "" {
		confirmMode = shared.ConfirmPerTrack
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SyncEngine{
		server:      server,
		matcher:     matcher,
		confirmer:   confirmer,
		confirmMode: confirmMode,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// entryKey is the case-folded identity key used for membership testing.
func entryKey(artist, title string) string {
	return strings.ToLower(shared.TrackKey(artist, title))
}

// Snapshot fetches a read-only view of the named playlist, including the
// identity key of every current entry. Returns shared.ErrPlaylistNotFound if
// the playlist does not exist; it is never created.
func (e *SyncEngine) Snapshot(ctx context.Context, name, playlistType string) (*models.Playlist, error) {
	if e.server == nil {
		return nil, fmt.Errorf("%w: media server not initialized", shared.ErrServiceUnavailable)
	}

	playlist, err := e.server.GetPlaylist(ctx, name, playlistType)
	if err != nil {
		return nil, err
	}

	items, err := e.server.PlaylistItems(ctx, playlist.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch playlist items: %v", shared.ErrAPIRequest, err)
	}

	playlist.Keys = make(map[string]struct{}, len(items))
	for _, item := range items {
		playlist.Keys[entryKey(item.Artist, item.Title)] = struct{}{}
	}

	return playlist, nil
}

// Reconcile classifies every backlog request against the playlist snapshot.
//
// Requests already present in the snapshot are classified without touching
// the library; the rest go through the matcher. The backlog's order is
// preserved within each bucket.
func (e *SyncEngine) Reconcile(ctx context.Context, requests []models.TrackRequest, playlist *models.Playlist, progress chan<- ProgressUpdate) ReconcileResult {
	result := ReconcileResult{}
	total := len(requests)

	e.sendProgress(progress, matchingUpdate(total))

	for i, req := range requests {
		e.sendProgress(progress, matchTrackUpdate(i+1, total, req))

		if playlist.Contains(entryKey(req.Artist, req.Title)) {
			result.AlreadyPresent = append(result.AlreadyPresent, req)
			continue
		}

		outcome := e.matcher.Match(ctx, req)
		switch outcome.Status {
		case models.StatusMatched:
			result.Matched = append(result.Matched, Match{
				Request:   req,
				Candidate: *outcome.Candidate,
				Score:     outcome.Score,
			})
		default:
			result.Unmatched = append(result.Unmatched, req)
		}
	}

	return result
}

// ConfirmAdditions consults the confirmation gate for the matched bucket,
// splitting it into confirmed and declined. In per-track mode each match is
// prompted individually, in backlog order; in batch mode a single prompt
// covers the whole playlist.
func (e *SyncEngine) ConfirmAdditions(matched []Match, playlistName string) (confirmed, declined []Match) {
	if len(matched) == 0 || e.confirmer == nil {
		return nil, nil
	}

	if e.confirmMode == shared.ConfirmPerBatch {
		prompt := fmt.Sprintf("Add %d matched tracks to playlist %q?", len(matched), playlistName)
		if e.confirmer.Confirm(prompt) {
			return matched, nil
		}
		return nil, matched
	}

	for _, m := range matched {
		prompt := fmt.Sprintf("Add %q by %q (score %.2f) to playlist %q?",
			m.Candidate.Title, m.Candidate.Artist, m.Score, playlistName)
		if e.confirmer.Confirm(prompt) {
			confirmed = append(confirmed, m)
		} else {
			declined = append(declined, m)
		}
	}
	return confirmed, declined
}

// Apply adds the confirmed candidates to the playlist.
//
// Candidates whose identity key is already in the snapshot are counted as
// added without issuing a call, so redundant invocations cannot create
// duplicates even if upstream filtering was bypassed. The rest are added in
// one batch call; if the batch fails, each candidate is retried individually
// so one bad reference does not block its siblings. Per-item failures are
// logged and excluded from the added set.
func (e *SyncEngine) Apply(ctx context.Context, playlist *models.Playlist, confirmed []Match, progress chan<- ProgressUpdate) (added []Match, failures []AddFailure) {
	if len(confirmed) == 0 {
		return nil, nil
	}

	var pending []Match
	for _, m := range confirmed {
		if playlist.Contains(entryKey(m.Candidate.Artist, m.Candidate.Title)) {
			e.logger.Debug("candidate already a playlist member", "title", m.Candidate.Title, "artist", m.Candidate.Artist)
			added = append(added, m)
			continue
		}
		pending = append(pending, m)
	}

	if len(pending) == 0 {
		return added, nil
	}

	e.sendProgress(progress, applyUpdate(len(pending)))

	ids := make([]string, len(pending))
	for i, m := range pending {
		ids[i] = m.Candidate.ID
	}

	err := e.server.AddToPlaylist(ctx, playlist.ID, ids)
	if err == nil {
		return append(added, pending...), nil
	}
	e.logger.Warn("batch add failed, retrying per item", "playlist", playlist.Name, "err", err)

	for _, m := range pending {
		if err := e.server.AddToPlaylist(ctx, playlist.ID, []string{m.Candidate.ID}); err != nil {
			e.logger.Error("failed to add track", "title", m.Candidate.Title, "artist", m.Candidate.Artist, "playlist", playlist.Name, "err", err)
			failures = append(failures, AddFailure{Match: m, Err: err})
			continue
		}
		added = append(added, m)
	}

	return added, failures
}

// RunPlaylist performs a full reconcile/confirm/apply/prune pass over one
// playlist's backlog. The caller persists Remaining; nothing is written here,
// so an interrupted pass leaves the backlog file untouched.
func (e *SyncEngine) RunPlaylist(ctx context.Context, playlistName, playlistType string, requests []models.TrackRequest, progress chan<- ProgressUpdate) (*PlaylistRunResult, error) {
	e.sendProgress(progress, snapshotUpdate(playlistName))

	playlist, err := e.Snapshot(ctx, playlistName, playlistType)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, snapshotDoneUpdate(playlist))

	result := &PlaylistRunResult{Playlist: playlist}
	result.Reconciled = e.Reconcile(ctx, requests, playlist, progress)
	if len(result.Reconciled.Matched) > 0 {
		e.sendProgress(progress, confirmUpdate(len(result.Reconciled.Matched)))
	}
	result.Confirmed, result.Declined = e.ConfirmAdditions(result.Reconciled.Matched, playlistName)
	result.Added, result.Failures = e.Apply(ctx, playlist, result.Confirmed, progress)

	// already-present and durably-added requests are resolved; declined,
	// failed, and unmatched ones stay for the next run
	resolved := make(map[models.TrackRequest]struct{}, len(result.Added)+len(result.Reconciled.AlreadyPresent))
	for _, req := range result.Reconciled.AlreadyPresent {
		resolved[req] = struct{}{}
	}
	for _, m := range result.Added {
		resolved[m.Request] = struct{}{}
	}
	result.Remaining = Prune(requests, resolved)

	e.sendProgress(progress, pruneUpdate(len(requests)-len(result.Remaining), len(result.Remaining)))

	return result, nil
}
