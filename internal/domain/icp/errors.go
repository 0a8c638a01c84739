package icp

import "errors"

// Sentinel kinds for ICP configuration errors.
var (
	ErrInvalidWeights = errors.New("icp weights must sum to 1.0")
)
