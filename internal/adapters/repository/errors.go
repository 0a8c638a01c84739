package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("lead not found")
	ErrInvalidLimit = errors.New("invalid listing limit")
)
