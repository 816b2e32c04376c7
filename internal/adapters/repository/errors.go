package repository

import "errors"

// Sentinel kinds for standings lookups.
var (
	ErrNotFound     = errors.New("competitor not found")
	ErrInvalidLimit = errors.New("invalid standings limit")
)
