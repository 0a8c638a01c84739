package enrich

import "errors"

// Enrichment error kinds.
var (
	// ErrMissingProfileURL indicates neither a profile nor a company URL
	// was supplied, so there is nothing to enrich from.
	ErrMissingProfileURL = errors.New("missing profile url")
)
