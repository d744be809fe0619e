package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a service error so callers and handlers can react without
// string matching.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindInvalidState Kind = "invalid_state"
	KindConcurrency  Kind = "concurrency"
)

// Error is the typed error returned by the service layer. Concurrency errors
// are retryable: callers are expected to re-fetch and resubmit.
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

// Retryable reports whether the caller may retry the operation after
// re-reading current state.
func (e *Error) Retryable() bool {
	return e.Kind == KindConcurrency
}

// NewValidation creates a validation error (bad input, no retry).
func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound creates a not-found error for a missing entity.
func NewNotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewInvalidState creates a business-rule violation error.
func NewInvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NewConcurrency creates an optimistic-lock conflict error.
func NewConcurrency(entity, id string) *Error {
	return &Error{
		Kind:    KindConcurrency,
		Message: fmt.Sprintf("%s was modified by another user, retry: %s", entity, id),
	}
}

// Wrap attaches an underlying cause to a typed error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsInvalidState reports whether err is a business-rule violation.
func IsInvalidState(err error) bool { return IsKind(err, KindInvalidState) }

// IsConcurrency reports whether err is an optimistic-lock conflict.
func IsConcurrency(err error) bool { return IsKind(err, KindConcurrency) }
