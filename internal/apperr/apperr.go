// Package apperr defines the error kinds shared by the catalog, watch-state
// and session layers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on it.
type Kind string

const (
	KindNotAuthenticated Kind = "NOT_AUTHENTICATED"
	KindForbidden        Kind = "FORBIDDEN"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindBadRequest       Kind = "BAD_REQUEST"
	KindMetadata         Kind = "METADATA_FETCH_FAILED"
	KindInternal         Kind = "INTERNAL"
)

// Error carries a Kind, a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so the sentinels
// below match any error of their kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotAuthenticated = New(KindNotAuthenticated, "user not authenticated")
	ErrMetadataFetch    = New(KindMetadata, "metadata fetch failed")
	ErrEmptyQuery       = New(KindBadRequest, "search query is empty")
)

// New creates an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping err.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) error   { return New(KindNotFound, message) }
func Conflict(message string) error   { return New(KindConflict, message) }
func BadRequest(message string) error { return New(KindBadRequest, message) }
func Forbidden(message string) error  { return New(KindForbidden, message) }

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotAuthenticated(err error) bool { return KindOf(err) == KindNotAuthenticated }
func IsConflict(err error) bool         { return KindOf(err) == KindConflict }
func IsNotFound(err error) bool         { return KindOf(err) == KindNotFound }
