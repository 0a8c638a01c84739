package service

import "errors"

var (
	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrDuplicateSignal marks a signal whose ID was already ingested.
	ErrDuplicateSignal = errors.New("duplicate signal")

	// ErrBackpressure is returned when the rescore queue rejects a job.
	ErrBackpressure = errors.New("rescore queue full")

	// ErrBadLeadCache marks a corrupted lead cache entry.
	ErrBadLeadCache = errors.New("invalid cached lead")
)
