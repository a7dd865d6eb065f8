// Package apperrors defines the error taxonomy returned by services and the
// HTTP status each kind maps to.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindInvalidOperation
	KindCredentials
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindCredentials:
		return "credentials"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// StatusCode returns the HTTP status for a kind.
// Bad credentials and taken usernames are reported as 400, matching what
// the web client already expects.
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindConflict, KindInvalidOperation, KindCredentials:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a client-safe message.
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

// Is matches two *Error values of the same kind and message, so callers can
// compare against the predefined errors below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error       { return newError(KindValidation, message) }
func Conflict(message string) *Error         { return newError(KindConflict, message) }
func InvalidOperation(message string) *Error { return newError(KindInvalidOperation, message) }
func Credentials(message string) *Error      { return newError(KindCredentials, message) }
func Unauthorized(message string) *Error     { return newError(KindUnauthorized, message) }
func Forbidden(message string) *Error        { return newError(KindForbidden, message) }
func NotFound(message string) *Error         { return newError(KindNotFound, message) }

// Internal wraps an unexpected failure. The cause is kept for logging but
// never rendered to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

var (
	ErrUserNotFound         = NotFound("User not found")
	ErrPostNotFound         = NotFound("Post not found")
	ErrNotificationNotFound = NotFound("Notification not found")
	ErrInvalidCredentials   = Credentials("invalid username or password")
	ErrNoToken              = Unauthorized("Unauthorized: No Token Provided")
	ErrInvalidToken         = Unauthorized("Unauthorized: Invalid Token")
	ErrSelfFollow           = InvalidOperation("You can't follow/unfollow yourself")
)

// From converts any error into an *Error. Unclassified errors become
// KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// KindOf returns the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	return From(err).Kind
}
