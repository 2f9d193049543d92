// Package common defines shared constants, helpers and sentinel errors used
// across the studyvault components. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound       = errors.New("not found")
	ErrCorrupt        = errors.New("record corrupt")
	ErrStorageFailure = errors.New("storage failure")

	// Request-level errors.
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")

	// Collaborator errors (text extraction, answer generation).
	ErrUnavailable       = errors.New("service unavailable")
	ErrTimeout           = errors.New("timeout")
	ErrAuth              = errors.New("authentication rejected")
	ErrMalformedResponse = errors.New("malformed response")
	ErrExtractionFailed  = errors.New("extraction failed")
)
