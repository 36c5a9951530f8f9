// Package apierr defines the typed errors the service layer raises and the
// handlers translate into HTTP responses.
package apierr

import (
	"errors"
	"net/http"
)

// Error carries an HTTP status alongside the user-visible message. Err holds
// the underlying cause, if any, and is never shown to clients outside debug
// mode.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two API errors by status so errors.Is works with the
// constructors' results regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Status == t.Status
}

// BadRequest reports malformed input, an empty update set or a downstream
// insert failure.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized reports a missing, invalid or expired credential.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden reports an authenticated requester that does not own the
// resource's parent trip.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound reports an absent resource. Unowned resources report NotFound as
// well so existence is not leaked.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict reports a duplicate registration.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// RateLimited reports identity-provider throttling.
func RateLimited(message string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: message}
}

// Internal wraps an unexpected failure as HTTP 500.
func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// Wrap attaches an underlying cause and returns the error for chaining.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// From returns err as an *Error, wrapping unknown errors as Internal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("Internal server error", err)
}
