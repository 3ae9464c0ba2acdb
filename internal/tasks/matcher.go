package tasks

import (
	"context"
	"strings"

	"github.com/adrg/strutil"
	"github.com/charmbracelet/log"

	"plexsync/internal/models"
	"plexsync/internal/shared"
)

// DefaultThreshold is the minimum similarity ratio for a library candidate
// to count as a match.
const DefaultThreshold = 0.9

// Library defines the search access the matcher needs.
// This abstraction allows for easier testing and decoupling from the concrete Plex client.
type Library interface {
	SearchArtists(ctx context.Context, name string) ([]models.Artist, error)
	ArtistTracks(ctx context.Context, artistID string) ([]models.Track, error)
	SearchTracks(ctx context.Context, query string) ([]models.Track, error)
}

// SequenceRatio is a [strutil.StringMetric] scoring two strings by their
// longest common subsequence: 2*lcs / (len(a)+len(b)), in [0, 1].
type SequenceRatio struct{}

// Compare computes the sequence ratio over runes.
func (SequenceRatio) Compare(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}

// Matcher finds the single best library candidate for a backlog request.
//
// Threshold and metric are explicit inputs rather than constants; ties keep
// the first candidate seen in enumeration order.
type Matcher struct {
	library   Library
	threshold float64
	metric    strutil.StringMetric
	logger    *log.Logger
}

// NewMatcher creates a Matcher over the given library. A non-positive
// threshold falls back to DefaultThreshold; a nil metric falls back to
// SequenceRatio.
func NewMatcher(library Library, threshold float64, logger *log.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Matcher{
		library:   library,
		threshold: threshold,
		metric:    SequenceRatio{},
		logger:    logger,
	}
}

// SetMetric overrides the similarity metric.
func (m *Matcher) SetMetric(metric strutil.StringMetric) {
	if metric != nil {
		m.metric = metric
	}
}

// Threshold returns the configured minimum score.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match classifies a single request against the library.
//
// Candidates come from the request's artist entity when one is found, and
// from a combined "artist title" free-text search otherwise. Every candidate
// title is normalized and case-folded before scoring. A failed library query
// classifies the request as unmatched; it is logged, not retried.
func (m *Matcher) Match(ctx context.Context, req models.TrackRequest) models.MatchOutcome {
	unmatched := models.MatchOutcome{Status: models.StatusUnmatched}

	normArtist := shared.Normalize(req.Artist)
	wantTitle := strings.ToLower(shared.Normalize(req.Title))

	candidates, err := m.candidates(ctx, req, normArtist)
	if err != nil {
		m.logger.Warn("library search failed", "title", req.Title, "artist", req.Artist, "err", err)
		return unmatched
	}

	var best *models.Track
	var bestScore float64
	for i := range candidates {
		candTitle := strings.ToLower(shared.Normalize(candidates[i].Title))
		score := strutil.Similarity(wantTitle, candTitle, m.metric)
		// strict > keeps the first candidate on ties
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best == nil || bestScore < m.threshold {
		return unmatched
	}

	return models.MatchOutcome{
		Status:    models.StatusMatched,
		Candidate: best,
		Score:     bestScore,
	}
}

// candidates enumerates library tracks for scoring, preferring the artist
// entity's own tracks over a whole-library text search.
func (m *Matcher) candidates(ctx context.Context, req models.TrackRequest, normArtist string) ([]models.Track, error) {
	artists, err := m.library.SearchArtists(ctx, normArtist)
	if err != nil {
		return nil, err
	}

	if len(artists) > 0 {
		tracks, err := m.library.ArtistTracks(ctx, artists[0].ID)
		if err != nil {
			return nil, err
		}
		if len(tracks) > 0 {
			return tracks, nil
		}
	}

	query := strings.TrimSpace(normArtist + " " + shared.Normalize(req.Title))
	return m.library.SearchTracks(ctx, query)
}
