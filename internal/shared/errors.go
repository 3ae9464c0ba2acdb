package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingToken  = fmt.Errorf("missing plex token")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrSectionNotFound    = fmt.Errorf("music library section not found")

	// Backlog errors
	ErrBacklogDirMissing = fmt.Errorf("backlog directory not found")
	ErrBacklogHeader     = fmt.Errorf("backlog file missing title/artist header")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
