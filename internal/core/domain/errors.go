package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidMode indicates an update mode outside new_only, full_sync and intelligent.
	ErrInvalidMode = errors.New("invalid update mode")

	// ErrRateLimited indicates the oracle rejected a request because of rate limiting or quota.
	ErrRateLimited = errors.New("rate limited")

	// ErrOracleUnavailable indicates no generation oracle is configured.
	ErrOracleUnavailable = errors.New("oracle unavailable")

	// ErrCacheUnavailable indicates the change cache backend could not be reached.
	ErrCacheUnavailable = errors.New("change cache unavailable")

	// ErrEmptyDocument indicates the requirements source returned no content.
	ErrEmptyDocument = errors.New("requirements document is empty")
)

// ConfigurationError reports invalid or missing settings.
// It is fatal before any I/O takes place.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// GenerationError reports that the oracle could not produce output for a batch,
// either because retries were exhausted or because the fault was not retryable.
type GenerationError struct {
	Batch    int
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for batch %d after %d attempt(s): %v", e.Batch, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MergeError reports a failure to persist the merged record set.
type MergeError struct {
	Op  string
	Err error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge failed during %s: %v", e.Op, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// ParseRecoveryWarning describes a generated block that was dropped because too few
// fields could be recovered. It is never fatal.
type ParseRecoveryWarning struct {
	Block     int
	Recovered int
	Required  int
	Excerpt   string
}

func (w ParseRecoveryWarning) Error() string {
	return fmt.Sprintf("block %d dropped: recovered %d of %d required fields", w.Block, w.Recovered, w.Required)
}
