package model

import "github.com/pkg/errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrMalformedState is recovered locally by substituting empty state.
	ErrMalformedState = errors.New("malformed persisted state")
	// ErrUnavailable covers failed or uncredentialed enrichment calls.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrInvariantViolation is a list write attempted while the list scope
	// does not match the active identity. It never reaches the store.
	ErrInvariantViolation = errors.New("list scope does not match active identity")
)
