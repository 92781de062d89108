package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("remote content changed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyApplied   = errors.New("suggestion already applied")
)

// TransientError wraps a network or rate-limit failure from the remote
// host. Callers may retry at a higher level; the gateway never retries
// silently.
type TransientError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: transient failure (status %d)", e.Op, e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable remote-host failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
