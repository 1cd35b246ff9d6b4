// Package errors provides structured error types for the clusterflow layout engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes group into the failure classes of the layout pipeline:
//   - INVALID_*: malformed diagram input (unknown ids, bad directions)
//   - PARENT_CYCLE, LIMIT_EXCEEDED: structural errors, fatal for a render
//   - AMBIGUOUS_ANCHOR: cluster resolution could not pick a representative
//   - LAYOUT_FAILED, DRAW_FAILED: collaborator failures
//   - INTERNAL_ERROR: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeLimitExceeded, "extraction depth %d exceeds %d", d, max)
//	if errors.Is(err, errors.ErrCodeLimitExceeded) {
//	    // Malformed cluster input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLayout, origErr, "layout of %s", graphID)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidID        Code = "INVALID_ID"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Structural errors
	ErrCodeParentCycle   Code = "PARENT_CYCLE"
	ErrCodeLimitExceeded Code = "LIMIT_EXCEEDED"

	// Resolution errors
	ErrCodeAmbiguousAnchor Code = "AMBIGUOUS_ANCHOR"

	// Collaborator errors
	ErrCodeLayout Code = "LAYOUT_FAILED"
	ErrCodeDraw   Code = "DRAW_FAILED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
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

// IsFatal reports whether err belongs to the structural class of failures:
// a parent cycle or an exceeded recursion limit. These abort a render and
// are never worth retrying with the same input.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeParentCycle, ErrCodeLimitExceeded:
		return true
	}
	return false
}
