// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Configuration errors
	ErrInvalidConfig = &Error{Code: "INVALID_CONFIG", Message: "invalid configuration"}

	// Computation errors
	ErrIndeterminate    = &Error{Code: "INDETERMINATE", Message: "arithmetic result is indeterminate"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data"}
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}

	// Parameter search errors
	ErrSamplingOverrun = &Error{Code: "SAMPLING_OVERRUN", Message: "sampled parameter exceeds declared range"}
	ErrSearchFailed    = &Error{Code: "SEARCH_FAILED", Message: "parameter search failed"}

	// Market data errors
	ErrDataFormat = &Error{Code: "DATA_FORMAT", Message: "malformed market data"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}

	// Service errors
	ErrNotFound     = &Error{Code: "NOT_FOUND", Message: "resource not found"}
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "unauthorized"}
	ErrRateLimited  = &Error{Code: "RATE_LIMITED", Message: "rate limit exceeded"}
	ErrInternal     = &Error{Code: "INTERNAL", Message: "internal error"}
)
