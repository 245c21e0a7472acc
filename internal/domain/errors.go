package domain

import "errors"

var (
	// ErrInvalidRequest marks client input errors (mapped to 400).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks a missing record (mapped to 404).
	ErrNotFound = errors.New("not found")
	// ErrProviderFailure marks an upstream provider error (mapped to 500).
	ErrProviderFailure = errors.New("provider failure")
)
