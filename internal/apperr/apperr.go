// Package apperr carries the typed failure values the rest of the service
// speaks in. Every known-cause failure is constructed as an operational
// error with an HTTP status; anything else is wrapped as internal and its
// detail never leaves the process outside dev mode.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeDuplicate    Code = "duplicate_field"
	CodeValidation   Code = "validation_failed"
	CodeCast         Code = "invalid_identifier"
	CodeInternal     Code = "internal_error"
)

type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error // underlying cause, kept for logs only

	// Operational marks expected failures that are safe to describe to the
	// client verbatim.
	Operational bool
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newOperational(code Code, status int, message string) *Error {
	return &Error{
		Code:        code,
		Status:      status,
		Message:     message,
		Operational: true,
	}
}

func BadRequest(message string) *Error {
	return newOperational(CodeBadRequest, http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return newOperational(CodeUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return newOperational(CodeForbidden, http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return newOperational(CodeNotFound, http.StatusNotFound, message)
}

func Duplicate(field, value string) *Error {
	msg := fmt.Sprintf("Duplicate field value: %s. Please use another value!", value)
	if field != "" {
		msg = fmt.Sprintf("Duplicate %s: %s. Please use another value!", field, value)
	}
	return newOperational(CodeDuplicate, http.StatusBadRequest, msg)
}

func Validation(messages []string) *Error {
	return newOperational(
		CodeValidation,
		http.StatusBadRequest,
		"Invalid input data. "+strings.Join(messages, ". "),
	)
}

func Cast(path, value string) *Error {
	return newOperational(
		CodeCast,
		http.StatusBadRequest,
		fmt.Sprintf("Invalid %s: %s", path, value),
	)
}

// From normalizes any failure into a typed error. Already-typed errors pass
// through untouched, everything else is an unexpected internal fault.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// InternalMessage wraps an unexpected fault while keeping a client-safe
// message. Used when the caller can name what went wrong without leaking
// the underlying detail.
func InternalMessage(err error, message string) *Error {
	return &Error{
		Code:        CodeInternal,
		Status:      http.StatusInternalServerError,
		Message:     message,
		Err:         err,
		Operational: true,
	}
}

func Internal(err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: "Something went very wrong!",
		Err:     err,
	}
}
