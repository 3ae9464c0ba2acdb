package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"plexsync/internal/models"
	"plexsync/internal/shared"
)

// RunRepository implements [models.Repository] for [models.SyncRun] persistence.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.SyncRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, playlist_name, backlog_total, already_present, added, declined, failed, unmatched, started_at, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var completedAt any
	if !run.CompletedAt().IsZero() {
		completedAt = run.CompletedAt()
	}

	_, err = r.db.Exec(query, id, sequence, run.PlaylistName(),
		run.BacklogTotal(), run.AlreadyPresent(), run.Added(), run.Declined(), run.Failed(), run.Unmatched(),
		run.StartedAt(), completedAt, run.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `
		SELECT id, sequence, playlist_name, backlog_total, already_present, added, declined, failed, unmatched, started_at, completed_at, created_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// Update modifies an existing run in the database
func (r *RunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	run.SetUpdatedAt(time.Now())

	var completedAt any
	if !run.CompletedAt().IsZero() {
		completedAt = run.CompletedAt()
	}

	query := `
		UPDATE runs
		SET backlog_total = ?, already_present = ?, added = ?, declined = ?, failed = ?, unmatched = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.BacklogTotal(), run.AlreadyPresent(), run.Added(), run.Declined(), run.Failed(), run.Unmatched(),
		completedAt, run.ID())
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID())
	}

	return nil
}

// Delete removes a run by ID
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}

	return nil
}

// Recent retrieves the most recently started runs, newest first. A
// non-positive limit returns every run.
func (r *RunRepository) Recent(limit int) ([]*models.SyncRun, error) {
	query := `
		SELECT id, sequence, playlist_name, backlog_total, already_present, added, declined, failed, unmatched, started_at, completed_at, created_at
		FROM runs
		ORDER BY started_at DESC, sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.SyncRun, error) {
	var (
		id             string
		sequence       int
		playlistName   string
		backlogTotal   int
		alreadyPresent int
		added          int
		declined       int
		failed         int
		unmatched      int
		startedAt      time.Time
		completedAt    sql.NullTime
		createdAt      time.Time
	)

	err := row.Scan(&id, &sequence, &playlistName,
		&backlogTotal, &alreadyPresent, &added, &declined, &failed, &unmatched,
		&startedAt, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	run := models.NewSyncRun(playlistName)
	run.SetID(id)
	run.SetSequence(sequence)
	run.SetCounts(backlogTotal, alreadyPresent, added, declined, failed, unmatched)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	if completedAt.Valid {
		run.SetCompletedAt(completedAt.Time)
	}

	return run, nil
}
