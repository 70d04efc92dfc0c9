// Package apperr carries the error taxonomy shared by services and handlers:
// each error knows the HTTP status it maps to, so handlers never guess.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Msg: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Msg: msg}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Status: http.StatusConflict, Msg: fmt.Sprintf(format, args...)}
}

// External marks a failed outbound dependency (channel publish and the like).
func External(msg string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Msg: msg, Err: err}
}

func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

// StatusOf extracts the HTTP status of err, defaulting to 500.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the user-facing message of err. Unexpected errors are
// not leaked to clients.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "internal error"
}
