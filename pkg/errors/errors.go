package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrCancelled    ErrorCode = "CANCELLED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrTemplate    ErrorCode = "TEMPLATE"

	// FileSystem errors
	ErrFileRead     ErrorCode = "FILE_READ"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrFileEncoding ErrorCode = "FILE_ENCODING"
	ErrFileRemove   ErrorCode = "FILE_REMOVE"
	ErrScan         ErrorCode = "SCAN"

	// Run errors
	ErrNotProjectRoot ErrorCode = "NOT_PROJECT_ROOT"
	ErrPartialFailure ErrorCode = "PARTIAL_FAILURE"
	ErrTokensRemain   ErrorCode = "TOKENS_REMAIN"
)

// SpecinitError represents a structured error with code and details
type SpecinitError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SpecinitError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SpecinitError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SpecinitError) Is(target error) bool {
	var targetErr *SpecinitError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SpecinitError with the given code and message
func New(code ErrorCode, message string) *SpecinitError {
	return &SpecinitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SpecinitError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SpecinitError {
	return &SpecinitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SpecinitError
func Wrap(err error, code ErrorCode, message string) *SpecinitError {
	if err == nil {
		return nil
	}
	return &SpecinitError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SpecinitError {
	if err == nil {
		return nil
	}
	return &SpecinitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SpecinitError) WithDetail(key string, value interface{}) *SpecinitError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var specErr *SpecinitError
	if errors.As(err, &specErr) {
		return specErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SpecinitError
func GetErrorCode(err error) ErrorCode {
	var specErr *SpecinitError
	if errors.As(err, &specErr) {
		return specErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SpecinitError
func GetErrorDetails(err error) map[string]interface{} {
	var specErr *SpecinitError
	if errors.As(err, &specErr) {
		return specErr.Details
	}
	return nil
}
