package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindBadRequest
	KindForbidden
	KindUnauthorized
)

// Status maps a kind to its HTTP status.
func (k ErrorKind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		// clients of the episode API expect 400 for duplicate numbers
		return http.StatusBadRequest
	case KindBadRequest:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// AppError is a business-rule failure with a stable numeric code.
type AppError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, code int, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(code int, format string, args ...interface{}) *AppError {
	return newAppError(KindNotFound, code, format, args...)
}

func Conflict(code int, format string, args ...interface{}) *AppError {
	return newAppError(KindConflict, code, format, args...)
}

func BadRequest(code int, format string, args ...interface{}) *AppError {
	return newAppError(KindBadRequest, code, format, args...)
}

func Forbidden(code int, format string, args ...interface{}) *AppError {
	return newAppError(KindForbidden, code, format, args...)
}

func Unauthorized(code int, format string, args ...interface{}) *AppError {
	return newAppError(KindUnauthorized, code, format, args...)
}

// Internal wraps an unexpected store or adapter failure.
func Internal(code int, err error, format string, args ...interface{}) *AppError {
	e := newAppError(KindInternal, code, format, args...)
	e.Err = err
	return e
}

// KindOf reports the kind of err, KindInternal for anything that is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
