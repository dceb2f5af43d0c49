package automation

import "errors"

// Failure classes surfaced by the pipeline. Callers distinguish them with
// errors.Is; individual errors wrap these sentinels with context.
var (
	// ErrValidation marks malformed signal or asset input.
	ErrValidation = errors.New("validation failure")
	// ErrExternalService marks a reasoning backend failure (non-success,
	// rate-limited, or timed out).
	ErrExternalService = errors.New("external service failure")
	// ErrPersistence marks a store read or write failure.
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound marks a referenced asset or employee missing at lookup time.
	ErrNotFound = errors.New("not found")
)
