package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// wrapOp prefixes an error with the operation that produced it.
func wrapOp(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
