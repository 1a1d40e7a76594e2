package model

import "errors"

var (
	// ErrValidation marks client input that fails a required-field check.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced id that does not exist in storage.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists marks an idempotent no-op, surfaced as success with a
	// distinguishing status rather than as a failure.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnavailable marks a storage failure that persisted through retries.
	ErrUnavailable = errors.New("storage unavailable")
)
