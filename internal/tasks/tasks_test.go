package tasks

import (
	"context"
	"errors"
	"testing"

	"plexsync/internal/models"
	"plexsync/internal/shared"
	mocks "plexsync/internal/testing"
)

func snapshotPlaylist(entries ...models.Track) *models.Playlist {
	pl := &models.Playlist{
		ID:         "pl-1",
		Name:       "Road Trip",
		Type:       "audio",
		TrackCount: len(entries),
		Keys:       make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		pl.Keys[entryKey(e.Artist, e.Title)] = struct{}{}
	}
	return pl
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("builds identity keys from items", func(t *testing.T) {
		server := &mocks.MockServer{
			Playlist: &models.Playlist{ID: "pl-1", Name: "Road Trip", TrackCount: 2},
			Items: []models.Track{
				{ID: "1", Title: "Crucify", Artist: "Tori Amos"},
				{ID: "2", Title: "Nothing Compares 2 U", Artist: "Sinéad O'Connor"},
			},
		}
		engine := NewSyncEngine(server, nil, nil, shared.ConfirmPerTrack, nil)

		pl, err := engine.Snapshot(ctx, "Road Trip", "audio")
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(pl.Keys) != 2 {
			t.Fatalf("len(Keys) = %d, want 2", len(pl.Keys))
		}
		// membership testing is punctuation and case insensitive
		if !pl.Contains(entryKey("sinead o'connor", "NOTHING COMPARES 2 U")) {
			t.Error("snapshot should contain the case-folded key for every entry")
		}
	})

	t.Run("missing playlist is not created", func(t *testing.T) {
		server := &mocks.MockServer{}
		engine := NewSyncEngine(server, nil, nil, shared.ConfirmPerTrack, nil)

		_, err := engine.Snapshot(ctx, "No Such List", "audio")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("Snapshot() error = %v, want ErrPlaylistNotFound", err)
		}
		if len(server.AddCalls) != 0 {
			t.Error("no mutation should happen for a missing playlist")
		}
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("partitions into three disjoint buckets", func(t *testing.T) {
		server := &mocks.MockServer{
			Artists: []models.Artist{{ID: "100", Name: "Tori Amos"}},
			Tracks:  []models.Track{{ID: "2", Title: "Cornflake Girl", Artist: "Tori Amos"}},
		}
		engine := NewSyncEngine(server, NewMatcher(server, 0.9, nil), nil, shared.ConfirmPerTrack, nil)
		playlist := snapshotPlaylist(models.Track{Title: "Crucify", Artist: "Tori Amos"})

		requests := []models.TrackRequest{
			{Title: "Crucify", Artist: "Tori Amos"},        // already present
			{Title: "Cornflake Girl", Artist: "Tori Amos"}, // matched
			{Title: "Unknown Song", Artist: "Tori Amos"},   // unmatched
		}

		result := engine.Reconcile(ctx, requests, playlist, nil)

		if len(result.AlreadyPresent) != 1 || len(result.Matched) != 1 || len(result.Unmatched) != 1 {
			t.Fatalf("buckets = %d/%d/%d, want 1/1/1",
				len(result.AlreadyPresent), len(result.Matched), len(result.Unmatched))
		}
		if result.Total() != len(requests) {
			t.Errorf("Total() = %d, want %d", result.Total(), len(requests))
		}
		if result.Matched[0].Candidate.ID != "2" {
			t.Errorf("matched candidate = %+v, want track 2", result.Matched[0].Candidate)
		}
	})

	t.Run("already present skips the library entirely", func(t *testing.T) {
		server := &mocks.MockServer{}
		engine := NewSyncEngine(server, NewMatcher(server, 0.9, nil), nil, shared.ConfirmPerTrack, nil)
		playlist := snapshotPlaylist(models.Track{Title: "Crucify", Artist: "Tori Amos"})

		engine.Reconcile(ctx, []models.TrackRequest{
			{Title: "crucify!", Artist: "TORI AMOS"},
		}, playlist, nil)

		if server.SearchArtistsCalls != 0 || server.SearchTracksCalls != 0 {
			t.Errorf("library calls = %d/%d, want none for an already-present request",
				server.SearchArtistsCalls, server.SearchTracksCalls)
		}
	})
}

func TestConfirmAdditions(t *testing.T) {
	matched := []Match{
		{Request: models.TrackRequest{Title: "A", Artist: "x"}, Candidate: models.Track{ID: "1", Title: "A", Artist: "x"}, Score: 1},
		{Request: models.TrackRequest{Title: "B", Artist: "x"}, Candidate: models.Track{ID: "2", Title: "B", Artist: "x"}, Score: 1},
	}

	t.Run("per-track prompts individually", func(t *testing.T) {
		confirmer := &mocks.ScriptedConfirmer{Answers: []bool{true, false}}
		engine := NewSyncEngine(&mocks.MockServer{}, nil, confirmer, shared.ConfirmPerTrack, nil)

		confirmed, declined := engine.ConfirmAdditions(matched, "Road Trip")

		if len(confirmed) != 1 || confirmed[0].Candidate.ID != "1" {
			t.Errorf("confirmed = %+v, want only track 1", confirmed)
		}
		if len(declined) != 1 || declined[0].Candidate.ID != "2" {
			t.Errorf("declined = %+v, want only track 2", declined)
		}
		if len(confirmer.Prompts) != 2 {
			t.Errorf("prompts = %d, want one per match", len(confirmer.Prompts))
		}
	})

	t.Run("batch mode asks once for everything", func(t *testing.T) {
		confirmer := &mocks.ScriptedConfirmer{Answers: []bool{true}}
		engine := NewSyncEngine(&mocks.MockServer{}, nil, confirmer, shared.ConfirmPerBatch, nil)

		confirmed, declined := engine.ConfirmAdditions(matched, "Road Trip")

		if len(confirmed) != 2 || len(declined) != 0 {
			t.Errorf("confirmed/declined = %d/%d, want 2/0", len(confirmed), len(declined))
		}
		if len(confirmer.Prompts) != 1 {
			t.Errorf("prompts = %d, want 1", len(confirmer.Prompts))
		}
	})

	t.Run("batch decline rejects everything", func(t *testing.T) {
		confirmer := &mocks.ScriptedConfirmer{Answers: []bool{false}}
		engine := NewSyncEngine(&mocks.MockServer{}, nil, confirmer, shared.ConfirmPerBatch, nil)

		confirmed, declined := engine.ConfirmAdditions(matched, "Road Trip")

		if len(confirmed) != 0 || len(declined) != 2 {
			t.Errorf("confirmed/declined = %d/%d, want 0/2", len(confirmed), len(declined))
		}
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("batch add succeeds in one call", func(t *testing.T) {
		server := &mocks.MockServer{}
		engine := NewSyncEngine(server, nil, nil, shared.ConfirmPerTrack, nil)
		playlist := snapshotPlaylist()

		confirmed := []Match{
			{Candidate: models.Track{ID: "1", Title: "A", Artist: "x"}},
			{Candidate: models.Track{ID: "2", Title: "B", Artist: "x"}},
		}

		added, failures := engine.Apply(ctx, playlist, confirmed, nil)

		if len(added) != 2 || len(failures) != 0 {
			t.Fatalf("added/failures = %d/%d, want 2/0", len(added), len(failures))
		}
		if len(server.AddCalls) != 1 || len(server.AddCalls[0]) != 2 {
			t.Errorf("AddCalls = %v, want one batch of two", server.AddCalls)
		}
	})

	t.Run("batch failure falls back per item", func(t *testing.T) {
		server := &mocks.MockServer{
			AddErr:  errors.New("bad item reference"),
			FailIDs: map[string]bool{"2": true},
		}
		engine := NewSyncEngine(server, nil, nil, shared.ConfirmPerTrack, nil)
		playlist := snapshotPlaylist()

		confirmed := []Match{
			{Request: models.TrackRequest{Title: "A", Artist: "x"}, Candidate: models.Track{ID: "1", Title: "A", Artist: "x"}},
			{Request: models.TrackRequest{Title: "B", Artist: "x"}, Candidate: models.Track{ID: "2", Title: "B", Artist: "x"}},
		}

		added, failures := engine.Apply(ctx, playlist, confirmed, nil)

		if len(added) != 1 || added[0].Candidate.ID != "1" {
			t.Errorf("added = %+v, want only track 1", added)
		}
		if len(failures) != 1 || failures[0].Candidate.ID != "2" {
			t.Errorf("failures = %+v, want only track 2", failures)
		}
		// one batch call plus one retry per item
		if len(server.AddCalls) != 3 {
			t.Errorf("AddCalls = %d, want 3", len(server.AddCalls))
		}
	})

	t.Run("snapshot members are never re-added", func(t *testing.T) {
		server := &mocks.MockServer{}
		engine := NewSyncEngine(server, nil, nil, shared.ConfirmPerTrack, nil)
		playlist := snapshotPlaylist(models.Track{Title: "A", Artist: "x"})

		confirmed := []Match{
			{Candidate: models.Track{ID: "1", Title: "A", Artist: "x"}},
		}

		added, failures := engine.Apply(ctx, playlist, confirmed, nil)

		if len(added) != 1 || len(failures) != 0 {
			t.Fatalf("added/failures = %d/%d, want 1/0", len(added), len(failures))
		}
		if len(server.AddCalls) != 0 {
			t.Errorf("AddCalls = %v, want no mutation for an existing member", server.AddCalls)
		}
	})

	t.Run("empty confirmed set issues no calls", func(t *testing.T) {
		server := &mocks.MockServer{}
		engine := NewSyncEngine(server, nil, nil, shared.ConfirmPerTrack, nil)

		added, failures := engine.Apply(ctx, snapshotPlaylist(), nil, nil)

		if added != nil || failures != nil || len(server.AddCalls) != 0 {
			t.Error("Apply with nothing confirmed should be a no-op")
		}
	})
}

func TestRunPlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("full pass prunes only added tracks", func(t *testing.T) {
		server := &mocks.MockServer{
			Playlist: &models.Playlist{ID: "pl-1", Name: "Road Trip"},
			Items: []models.Track{
				{ID: "10", Title: "Crucify", Artist: "Tori Amos"},
			},
			Artists: []models.Artist{{ID: "100", Name: "Tori Amos"}},
			Tracks: []models.Track{
				{ID: "2", Title: "Cornflake Girl", Artist: "Tori Amos"},
				{ID: "3", Title: "Silent All These Years", Artist: "Tori Amos"},
			},
		}
		// first prompt accepted, second declined
		confirmer := &mocks.ScriptedConfirmer{Answers: []bool{true, false}}
		engine := NewSyncEngine(server, NewMatcher(server, 0.9, nil), confirmer, shared.ConfirmPerTrack, nil)

		requests := []models.TrackRequest{
			{Title: "Crucify", Artist: "Tori Amos"},
			{Title: "Cornflake Girl", Artist: "Tori Amos"},
			{Title: "Silent All These Years", Artist: "Tori Amos"},
		}

		result, err := engine.RunPlaylist(ctx, "Road Trip", "audio", requests, nil)
		if err != nil {
			t.Fatalf("RunPlaylist() error = %v", err)
		}

		if len(result.Reconciled.AlreadyPresent) != 1 {
			t.Errorf("AlreadyPresent = %d, want 1", len(result.Reconciled.AlreadyPresent))
		}
		if len(result.Added) != 1 || result.Added[0].Candidate.ID != "2" {
			t.Errorf("Added = %+v, want only track 2", result.Added)
		}
		if len(result.Declined) != 1 {
			t.Errorf("Declined = %d, want 1", len(result.Declined))
		}

		// present and added requests are resolved; only the declined one stays
		want := []models.TrackRequest{
			{Title: "Silent All These Years", Artist: "Tori Amos"},
		}
		if len(result.Remaining) != len(want) {
			t.Fatalf("Remaining = %+v, want %+v", result.Remaining, want)
		}
		for i := range want {
			if result.Remaining[i] != want[i] {
				t.Errorf("Remaining[%d] = %+v, want %+v", i, result.Remaining[i], want[i])
			}
		}
	})

	t.Run("failed add stays in the remaining backlog", func(t *testing.T) {
		server := &mocks.MockServer{
			Playlist: &models.Playlist{ID: "pl-1", Name: "Road Trip"},
			Artists:  []models.Artist{{ID: "100", Name: "Tori Amos"}},
			Tracks: []models.Track{
				{ID: "2", Title: "Cornflake Girl", Artist: "Tori Amos"},
				{ID: "3", Title: "Winter", Artist: "Tori Amos"},
			},
			AddErr:  errors.New("bad item reference"),
			FailIDs: map[string]bool{"3": true},
		}
		confirmer := &mocks.ScriptedConfirmer{Answers: []bool{true, true}}
		engine := NewSyncEngine(server, NewMatcher(server, 0.9, nil), confirmer, shared.ConfirmPerTrack, nil)

		requests := []models.TrackRequest{
			{Title: "Cornflake Girl", Artist: "Tori Amos"},
			{Title: "Winter", Artist: "Tori Amos"},
		}

		result, err := engine.RunPlaylist(ctx, "Road Trip", "audio", requests, nil)
		if err != nil {
			t.Fatalf("RunPlaylist() error = %v", err)
		}

		if len(result.Added) != 1 || result.Added[0].Candidate.ID != "2" {
			t.Errorf("Added = %+v, want only track 2", result.Added)
		}
		if len(result.Failures) != 1 || result.Failures[0].Candidate.ID != "3" {
			t.Fatalf("Failures = %+v, want only track 3", result.Failures)
		}

		// the failed addition is not resolved, so its request survives pruning
		want := models.TrackRequest{Title: "Winter", Artist: "Tori Amos"}
		if len(result.Remaining) != 1 || result.Remaining[0] != want {
			t.Errorf("Remaining = %+v, want [%+v]", result.Remaining, want)
		}
	})

	t.Run("progress reports every phase", func(t *testing.T) {
		server := &mocks.MockServer{
			Playlist: &models.Playlist{ID: "pl-1", Name: "Road Trip"},
			Artists:  []models.Artist{{ID: "100", Name: "Tori Amos"}},
			Tracks:   []models.Track{{ID: "2", Title: "Cornflake Girl", Artist: "Tori Amos"}},
		}
		confirmer := &mocks.ScriptedConfirmer{Answers: []bool{true}}
		engine := NewSyncEngine(server, NewMatcher(server, 0.9, nil), confirmer, shared.ConfirmPerTrack, nil)

		progress := make(chan ProgressUpdate, 32)
		_, err := engine.RunPlaylist(ctx, "Road Trip", "audio", []models.TrackRequest{
			{Title: "Cornflake Girl", Artist: "Tori Amos"},
		}, progress)
		if err != nil {
			t.Fatalf("RunPlaylist() error = %v", err)
		}
		close(progress)

		seen := map[Phase]bool{}
		for update := range progress {
			seen[update.Phase] = true
		}
		for _, phase := range []Phase{Snapshot, MatchTracks, ConfirmTracks, ApplyAdditions, PruneBacklog} {
			if !seen[phase] {
				t.Errorf("no update emitted for phase %v", phase)
			}
		}
	})

	t.Run("missing playlist aborts before matching", func(t *testing.T) {
		server := &mocks.MockServer{}
		engine := NewSyncEngine(server, NewMatcher(server, 0.9, nil), nil, shared.ConfirmPerTrack, nil)

		_, err := engine.RunPlaylist(ctx, "No Such List", "audio", []models.TrackRequest{
			{Title: "A", Artist: "x"},
		}, nil)

		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("RunPlaylist() error = %v, want ErrPlaylistNotFound", err)
		}
		if server.SearchArtistsCalls != 0 {
			t.Error("matching should not run without a snapshot")
		}
	})
}

func TestPrune(t *testing.T) {
	original := []models.TrackRequest{
		{Title: "A", Artist: "x"},
		{Title: "B", Artist: "x"},
		{Title: "C", Artist: "x"},
	}

	t.Run("removes resolved and preserves order", func(t *testing.T) {
		resolved := map[models.TrackRequest]struct{}{
			{Title: "B", Artist: "x"}: {},
		}

		got := Prune(original, resolved)

		if len(got) != 2 || got[0].Title != "A" || got[1].Title != "C" {
			t.Errorf("Prune() = %+v, want [A C]", got)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		resolved := map[models.TrackRequest]struct{}{
			{Title: "A", Artist: "x"}: {},
		}

		once := Prune(original, resolved)
		twice := Prune(once, resolved)

		if len(once) != len(twice) {
			t.Fatalf("second prune changed the result: %+v vs %+v", once, twice)
		}
	})

	t.Run("empty resolved keeps everything", func(t *testing.T) {
		got := Prune(original, map[models.TrackRequest]struct{}{})
		if len(got) != len(original) {
			t.Errorf("Prune() = %+v, want all originals", got)
		}
	})
}
