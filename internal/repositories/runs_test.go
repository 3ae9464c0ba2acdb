package repositories

import (
	"database/sql"
	"testing"
	"time"

	"plexsync/internal/models"
	"plexsync/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestRun(playlist string) *models.SyncRun {
	run := models.NewSyncRun(playlist)
	run.SetCounts(10, 3, 4, 1, 0, 2)
	return run
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("Road Trip")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("Sequence() = %d, want 1", run.Sequence())
		}
	})

	t.Run("Create rejects empty playlist name", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if err := repo.Create(models.NewSyncRun("")); err == nil {
			t.Error("expected validation error for empty playlist name")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("Road Trip")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}

		if got.PlaylistName() != "Road Trip" {
			t.Errorf("PlaylistName() = %q, want %q", got.PlaylistName(), "Road Trip")
		}
		if got.BacklogTotal() != 10 || got.Added() != 4 || got.Unmatched() != 2 {
			t.Errorf("counts = %d/%d/%d, want 10/4/2", got.BacklogTotal(), got.Added(), got.Unmatched())
		}
		if !got.CompletedAt().IsZero() {
			t.Error("an in-progress run should have no completion time")
		}
	})

	t.Run("Get missing run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if _, err := repo.Get("nonexistent"); err == nil {
			t.Error("expected error for missing run")
		}
	})

	t.Run("Update records completion", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("Road Trip")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.SetCounts(10, 3, 5, 0, 0, 2)
		run.Complete()
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Added() != 5 || got.Declined() != 0 {
			t.Errorf("counts = %d/%d, want 5/0", got.Added(), got.Declined())
		}
		if got.CompletedAt().IsZero() {
			t.Error("completed run should persist its completion time")
		}
	})

	t.Run("Update missing run", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("Road Trip")
		run.SetID("nonexistent")

		if err := repo.Update(run); err == nil {
			t.Error("expected error when updating a missing run")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := newTestRun("Road Trip")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("deleted run should not be retrievable")
		}
	})

	t.Run("Recent orders newest first", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		base := time.Now().Add(-time.Hour)
		for i, name := range []string{"First", "Second", "Third"} {
			run := newTestRun(name)
			run.SetStartedAt(base.Add(time.Duration(i) * time.Minute))
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run %q: %v", name, err)
			}
		}

		runs, err := repo.Recent(2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("len(runs) = %d, want 2", len(runs))
		}
		if runs[0].PlaylistName() != "Third" || runs[1].PlaylistName() != "Second" {
			t.Errorf("order = %q, %q; want Third, Second", runs[0].PlaylistName(), runs[1].PlaylistName())
		}
	})

	t.Run("Recent without limit returns everything", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, name := range []string{"A", "B"} {
			if err := repo.Create(newTestRun(name)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		runs, err := repo.Recent(0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("len(runs) = %d, want 2", len(runs))
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}
}
