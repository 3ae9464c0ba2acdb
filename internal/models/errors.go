package models

import "errors"

var (
	ErrEmptyPlaylistName = errors.New("playlist name cannot be empty")
	ErrNegativeCount     = errors.New("run counts cannot be negative")
)
