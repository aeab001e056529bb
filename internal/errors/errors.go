// Package errors defines custom error types for better error handling and debugging.
// AppError provides context-aware error reporting with type classification.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents errors raised by the API client and storage layers
type AppError struct {
	Type       string
	Message    string
	StatusCode int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error type constants
const (
	ErrorTypeConfigurationInvalid = "CONFIGURATION_INVALID"
	ErrorTypeAPIRequest           = "API_REQUEST"
	ErrorTypeAPIStatus            = "API_STATUS"
	ErrorTypeAPIDecode            = "API_DECODE"
	ErrorTypeStorage              = "STORAGE"
	ErrorTypeInvalidID            = "INVALID_ID"
)

// NewAppError creates a new AppError
func NewAppError(errorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates a configuration-related error
func NewConfigurationError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeConfigurationInvalid, message, cause)
}

// NewRequestError wraps a failure to build or send an outbound request
func NewRequestError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeAPIRequest, message, cause)
}

// NewStatusError records a non-2xx response from the metadata API
func NewStatusError(path string, status int) *AppError {
	e := NewAppError(ErrorTypeAPIStatus, fmt.Sprintf("%s returned status %d", path, status), nil)
	e.StatusCode = status
	return e
}

// NewDecodeError wraps a malformed API payload
func NewDecodeError(path string, cause error) *AppError {
	return NewAppError(ErrorTypeAPIDecode, fmt.Sprintf("failed to decode %s", path), cause)
}

// NewStorageError wraps favorites persistence failures
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeStorage, message, cause)
}

// NewInvalidIDError creates an invalid ID error
func NewInvalidIDError(id string) *AppError {
	return NewAppError(ErrorTypeInvalidID, fmt.Sprintf("Invalid ID format: %s", id), nil)
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, errorType string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Type == errorType
}

// AsStatus returns the upstream HTTP status when err is an API status error.
func AsStatus(err error) (int, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Type == ErrorTypeAPIStatus {
		return appErr.StatusCode, true
	}
	return 0, false
}
