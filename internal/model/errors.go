package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ErrorKind is a stable, machine-readable failure category.
type ErrorKind string

const (
	KindDuplicateEmail     ErrorKind = "duplicate_email"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindInvalidRefresh     ErrorKind = "invalid_refresh"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindStoreUnavailable   ErrorKind = "store_unavailable"
	KindInternal           ErrorKind = "internal"
)

// Error is a classified failure. Message is safe to show to clients,
// Err is kept for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "email is already registered"}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid email or password"}
	ErrInvalidRefresh     = &Error{Kind: KindInvalidRefresh, Message: "invalid refresh token"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrStoreUnavailable   = &Error{Kind: KindStoreUnavailable, Message: "storage temporarily unavailable"}
	ErrInternal           = &Error{Kind: KindInternal, Message: "internal server error"}
)

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return ErrInternal.Message
}
