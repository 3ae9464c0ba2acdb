package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error     // Create inserts a new model into the database
	Get(id string) (T, error) // Get retrieves a model by its ID
	Update(model T) error     // Update modifies an existing model in the database
	Delete(id string) error   // Delete removes a model from the database by its ID
}

// TrackRequest is one desired backlog entry: a (title, artist) pair pending
// reconciliation against the library. Values are immutable once parsed.
type TrackRequest struct {
	Title  string
	Artist string
}

// Artist represents an artist entity found in the media library.
type Artist struct {
	ID   string // library rating key
	Name string
}

// Track represents a track in the media library. ID is the opaque addable
// reference used for playlist mutations.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // Duration in seconds
}

// Playlist is a read-only snapshot of a destination playlist taken at the
// start of a reconciliation pass. Keys holds the case-folded identity key of
// every current entry and is used purely for membership testing.
type Playlist struct {
	ID         string
	Name       string
	Type       string
	TrackCount int
	Keys       map[string]struct{}
}

// Contains reports whether the snapshot already holds the given identity key.
func (p *Playlist) Contains(key string) bool {
	_, ok := p.Keys[key]
	return ok
}

// MatchStatus enumerates the three reconciliation buckets.
type MatchStatus int

const (
	StatusUnmatched MatchStatus = iota
	StatusAlreadyPresent
	StatusMatched
)

// String returns the human-readable bucket name.
func (s MatchStatus) String() string {
	switch s {
	case StatusAlreadyPresent:
		return "already-present"
	case StatusMatched:
		return "matched"
	default:
		return "unmatched"
	}
}

// MatchOutcome is the result of classifying one TrackRequest. Candidate is
// non-nil only when Status is StatusMatched, and always carries exactly one
// track, the highest-scoring candidate seen.
type MatchOutcome struct {
	Status    MatchStatus
	Candidate *Track
	Score     float64
}

// SyncRun records one reconciliation pass over a single playlist.
type SyncRun struct {
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
	completedAt    time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

// NewSyncRun creates an in-progress run record for the named playlist.
func NewSyncRun(playlistName string) *SyncRun {
	now := time.Now()
	return &SyncRun{
		playlistName: playlistName,
		startedAt:    now,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (r *SyncRun) ID() string             { return r.id }
func (r *SyncRun) Sequence() int          { return r.sequence }
func (r *SyncRun) PlaylistName() string   { return r.playlistName }
func (r *SyncRun) BacklogTotal() int      { return r.backlogTotal }
func (r *SyncRun) AlreadyPresent() int    { return r.alreadyPresent }
func (r *SyncRun) Added() int             { return r.added }
func (r *SyncRun) Declined() int          { return r.declined }
func (r *SyncRun) Failed() int            { return r.failed }
func (r *SyncRun) Unmatched() int         { return r.unmatched }
func (r *SyncRun) StartedAt() time.Time   { return r.startedAt }
func (r *SyncRun) CompletedAt() time.Time { return r.completedAt }
func (r *SyncRun) CreatedAt() time.Time   { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time   { return r.updatedAt }

func (r *SyncRun) SetID(id string)              { r.id = id }
func (r *SyncRun) SetSequence(seq int)          { r.sequence = seq }
func (r *SyncRun) SetUpdatedAt(t time.Time)     { r.updatedAt = t }
func (r *SyncRun) SetStartedAt(t time.Time)     { r.startedAt = t }
func (r *SyncRun) SetCompletedAt(t time.Time)   { r.completedAt = t }
func (r *SyncRun) SetCreatedAt(t time.Time)     { r.createdAt = t }
func (r *SyncRun) SetPlaylistName(name string)  { r.playlistName = name }

// SetCounts records the per-bucket totals for the pass.
func (r *SyncRun) SetCounts(backlogTotal, alreadyPresent, added, declined, failed, unmatched int) {
	r.backlogTotal = backlogTotal
	r.alreadyPresent = alreadyPresent
	r.added = added
	r.declined = declined
	r.failed = failed
	r.unmatched = unmatched
}

// Complete marks the run as finished now.
func (r *SyncRun) Complete() {
	now := time.Now()
	r.completedAt = now
	r.updatedAt = now
}

// Validate checks if the run's data is valid.
func (r *SyncRun) Validate() error {
	if r.playlistName == "" {
		return ErrEmptyPlaylistName
	}
	if r.backlogTotal < 0 || r.alreadyPresent < 0 || r.added < 0 || r.declined < 0 || r.failed < 0 || r.unmatched < 0 {
		return ErrNegativeCount
	}
	return nil
}
