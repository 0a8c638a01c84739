package signal

import "errors"

// Sentinel kinds for signal construction errors.
var (
	ErrInvalidSignal = errors.New("invalid signal")
)
