package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream failures.
var (
	// ErrUnreachable marks a network-level failure before any HTTP
	// response was received.
	ErrUnreachable = errors.New("upstream unreachable")

	// ErrMalformed marks a response body that did not decode as the
	// expected JSON shape.
	ErrMalformed = errors.New("upstream response malformed")
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Status)
}
