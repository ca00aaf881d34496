// Package errors provides structured error types for the openfare-rs
// extension.
//
// Error codes are machine-readable so the host tool can branch on
// failure classes without string matching:
//   - INVALID_*: input validation failures
//   - NOT_FOUND: a required registry resource does not exist
//   - *_ERROR: failures in a specific pipeline stage
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "path is not absolute: %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // handle validation error
//	}
//
//	// Wrap existing errors with stage context
//	err := errors.Wrap(errors.ErrCodeRegistry, origErr, "fetching %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for each failure class of the resolution pipeline.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"

	// Resource not found
	ErrCodeNotFound Code = "NOT_FOUND"

	// Pipeline stage errors
	ErrCodeRegistry             Code = "REGISTRY_ERROR"
	ErrCodeArchive              Code = "ARCHIVE_ERROR"
	ErrCodeManifest             Code = "MANIFEST_ERROR"
	ErrCodeLockParse            Code = "LOCK_PARSE_ERROR"
	ErrCodeDependencyResolution Code = "DEPENDENCY_RESOLUTION_ERROR"
	ErrCodeFilesystem           Code = "FILESYSTEM_ERROR"

	// Unexpected internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
