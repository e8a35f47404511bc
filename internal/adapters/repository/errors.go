package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound     = errors.New("selection not found")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrMissingID    = errors.New("selection event has no id")
)
