package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrReadFailure marks document content that could not be read or
	// is not valid text. Aggregation treats such documents as zero words.
	ErrReadFailure = errors.New("read failure")

	// ErrParseFailure marks a malformed metadata header.
	ErrParseFailure = errors.New("parse failure")
)

// ConflictError represents a name collision inside a container
type ConflictError struct {
	Message  string // Human-readable error message
	NodeKind string // "document" or "container"
	Path     string // Path of the existing node
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
