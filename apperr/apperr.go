// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

// Error carries a caller-safe message and an optional underlying cause.
// Only Message is ever written to a response.
type Error struct {
	Kind    Kind
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

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Forbidden(msg string) *Error      { return &Error{Kind: KindAuthorization, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps a storage or unexpected failure behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf reports the Kind of err. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the caller-safe message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps a Kind to its response code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
