// Package apperrors defines the failure taxonomy shared by every store.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable failure category.
type Kind string

const (
	// KindValidation marks input that fails a field constraint.
	KindValidation Kind = "VALIDATION"
	// KindConflict marks a uniqueness or referential violation.
	KindConflict Kind = "CONFLICT"
	// KindNotFound marks an operation on an id that does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindInvalidTransition marks a disallowed status change.
	KindInvalidTransition Kind = "INVALID_TRANSITION"
)

var (
	// ErrValidation matches any validation failure via errors.Is.
	ErrValidation = &Error{Kind: KindValidation}
	// ErrConflict matches any conflict failure via errors.Is.
	ErrConflict = &Error{Kind: KindConflict}
	// ErrNotFound matches any not-found failure via errors.Is.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrInvalidTransition matches any rejected status change via errors.Is.
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
)

// Error is the domain error type returned by store mutations.
type Error struct {
	Kind    Kind
	Field   string // offending field, when one applies
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Validation builds a validation failure for one field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Validationf is Validation with a format string.
func Validationf(field, format string, args ...any) *Error {
	return Validation(field, fmt.Sprintf(format, args...))
}

// Conflict builds a uniqueness or referential failure.
func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// Conflictf is Conflict with a format string.
func Conflictf(field, format string, args ...any) *Error {
	return Conflict(field, fmt.Sprintf(format, args...))
}

// NotFound builds a failure for a missing entity id.
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Field: "id", Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Transition builds a failure for a disallowed status change.
func Transition(entity string, from, to any) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Field:   "status",
		Message: fmt.Sprintf("%s status transition not allowed: %v -> %v", entity, from, to),
	}
}

// KindOf returns the Kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
