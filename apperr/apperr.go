// Package apperr carries the error taxonomy the core reports to its callers.
// Every denied check or violated invariant surfaces as one of these codes;
// handlers map them to HTTP statuses at the edge.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeInvalidState Code = "invalid_state"
	CodeValidation   Code = "validation"
	CodeInternal     Code = "internal"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal for plain errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message returns the user-facing message of err, hiding internals of plain
// errors behind a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error code to its response status.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
