package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error codes shared by every component in the system. Component
// packages (internal/store, internal/broker, internal/subscription, ...)
// define their own Err* constructors but reuse these codes, or add
// component-scoped codes of their own following the same CODE_STYLE.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeResourceExhausted = "RESOURCE_EXHAUSTED"
	CodeCancelled       = "CANCELLED"
	CodeTimeout         = "TIMEOUT"
	CodeUnavailable     = "UNAVAILABLE"
)

// AppError is the structured error type used across the system: a stable
// Code for programmatic handling, a human Message, and an optional wrapped
// cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func New(code string, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap annotates err with message, preserving its code if it is already an
// *AppError, otherwise tagging it CodeInternal.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	var app *AppError
	if errors.As(err, &app) {
		return New(app.Code, message+": "+app.Message, app.Err)
	}
	return New(CodeInternal, message, err)
}

// Code extracts the AppError code from err, or CodeInternal if err is not
// (or does not wrap) an *AppError.
func Code(err error) string {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeInternal
}

// Is reports whether err is an *AppError with the given code.
func Is(err error, code string) bool {
	return Code(err) == code
}

// HTTPStatus maps an error's code to the HTTP status that should be written
// in a REST response.
func HTTPStatus(err error) int {
	switch Code(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeCancelled:
		return 499
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
