package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so clones compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound              = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized          = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation            = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrTargetingRequired     = New("TARGETING_REQUIRED", http.StatusBadRequest, "targeting is required")
	ErrUnknownTargetingMode  = New("UNKNOWN_TARGETING_MODE", http.StatusBadRequest, "unknown targeting mode")
	ErrMissingRecipients     = New("MISSING_RECIPIENTS", http.StatusBadRequest, "at least one recipient is required")
	ErrDependencyUnavailable = New("DEPENDENCY_UNAVAILABLE", http.StatusServiceUnavailable, "storage is not available")
	ErrInternal              = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrAuditPersistFailed    = New("AUDIT_PERSIST_FAILED", http.StatusInternalServerError, "announcement delivered but the audit record could not be saved")
	ErrCacheMiss             = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Internal wraps an unexpected failure and exposes its text as diagnostic detail.
func Internal(err error, message string) *Error {
	wrapped := Wrap(err, ErrInternal.Code, ErrInternal.Status, message)
	if err != nil {
		wrapped.Detail = err.Error()
	}
	return wrapped
}
