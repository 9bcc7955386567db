package drive

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when an operation is invoked without
	// an access token. No network call is attempted.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when a file ceases to exist between lookup
	// and fetch.
	ErrNotFound = errors.New("file not found")
)

// StatusError is a transport failure carrying the remote status line.
// Calls are single-attempt; the caller decides whether to retry.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
}

// Error describes the failed operation and the remote status.
func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Status)
}
