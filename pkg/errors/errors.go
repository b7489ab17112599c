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

	// Package and store errors
	ErrParseFailure   ErrorCode = "PARSE_FAILURE"
	ErrUnchanged      ErrorCode = "UNCHANGED"
	ErrPrivatePackage ErrorCode = "PRIVATE_PACKAGE"

	// Execution errors
	ErrScriptFailure ErrorCode = "SCRIPT_FAILURE"

	// FileSystem errors
	ErrIOFailure     ErrorCode = "IO_FAILURE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
)

// ShelfError represents a structured error with code and details
type ShelfError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ShelfError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ShelfError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ShelfError) Is(target error) bool {
	var targetErr *ShelfError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ShelfError with the given code and message
func New(code ErrorCode, message string) *ShelfError {
	return &ShelfError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ShelfError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ShelfError {
	return &ShelfError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ShelfError
func Wrap(err error, code ErrorCode, message string) *ShelfError {
	if err == nil {
		return nil
	}
	return &ShelfError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ShelfError {
	if err == nil {
		return nil
	}
	return &ShelfError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ShelfError) WithDetail(key string, value interface{}) *ShelfError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var shelfErr *ShelfError
	if errors.As(err, &shelfErr) {
		return shelfErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ShelfError
func GetErrorCode(err error) ErrorCode {
	var shelfErr *ShelfError
	if errors.As(err, &shelfErr) {
		return shelfErr.Code
	}
	return ErrUnknown
}

// IsSkippable reports whether err only affects a single item of a batch.
// NotFound and ParseFailure skip the item; anything else aborts the run.
func IsSkippable(err error) bool {
	switch GetErrorCode(err) {
	case ErrNotFound, ErrParseFailure:
		return true
	}
	return false
}
