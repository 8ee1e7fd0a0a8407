package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a JetStorage error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrConflict           ErrorCode = "CONFLICT"            // 409
	ErrInternal           ErrorCode = "INTERNAL"            // 500
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
)

// JetError represents a structured error with code, status, and details.
type JetError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *JetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *JetError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *JetError {
	return &JetError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a captured value cannot be found.
func NewNotFound(identifier string) *JetError {
	return &JetError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("value not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for lost compare-and-swap races.
func NewConflict(msg string) *JetError {
	return &JetError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewStorageUnavailable creates a 503 error when the backing store cannot be reached.
func NewStorageUnavailable(err error) *JetError {
	msg := "storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("storage unavailable: %v", err)
	}
	return &JetError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *JetError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &JetError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a JetError with the given code.
func Is(err error, code ErrorCode) bool {
	var jErr *JetError
	if stderrors.As(err, &jErr) {
		return jErr.Code == code
	}
	return false
}

// As extracts a JetError from err, wrapping unknown errors as internal.
func As(err error) *JetError {
	var jErr *JetError
	if stderrors.As(err, &jErr) {
		return jErr
	}
	return NewInternal(err)
}
