package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPreferencesNotFound = errors.New("cultural preferences not found")
	ErrEdgeNotFound        = errors.New("compatibility edge not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrSelfComparison      = errors.New("cannot score a user against themselves")

	// ErrStaleEdge means an edge write carried older source data than what
	// is already persisted. Background recomputation discards such writes.
	ErrStaleEdge = errors.New("compatibility edge write is stale")

	// ErrStoreUnavailable marks transient persistence failures eligible
	// for bounded retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries per-field reasons for rejecting an input. It is
// always surfaced synchronously and never retried.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
