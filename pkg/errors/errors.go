// Package errors provides structured error types for trigen.
//
// Every failure in the graph-algebra core carries a machine-readable code so
// that callers can tell a defect in the algebra apart from bad input on disk
// or a failing oracle:
//   - INVARIANT_VIOLATION: an impossible edit or an incompatible history
//   - IMPOSSIBLE_PATTERN: a cycle configuration that cannot occur geometrically
//   - MALFORMED_DATA: truncated or garbled serialized bytes
//   - ORACLE_FAILURE: the certificate or path oracle failed
//   - OUT_OF_RANGE: a value exceeds the fixed-width codec bounds
//
// The remaining codes are used by the driver for configuration and I/O.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvariantViolation, "edge (%d,%d) already present", i, j)
//	if errors.Is(err, errors.ErrCodeInvariantViolation) {
//	    // abort the current graph
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMalformedData, origErr, "decode history")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Core algebra errors
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"
	ErrCodeImpossiblePattern  Code = "IMPOSSIBLE_PATTERN"
	ErrCodeMalformedData      Code = "MALFORMED_DATA"
	ErrCodeOracleFailure      Code = "ORACLE_FAILURE"
	ErrCodeOutOfRange         Code = "OUT_OF_RANGE"

	// Driver errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeStore         Code = "STORE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// IsFatal reports whether err signals a defect in the algebra or its caller
// rather than bad input. Fatal errors abort processing of the current graph.
func IsFatal(err error) bool {
	return Is(err, ErrCodeInvariantViolation) || Is(err, ErrCodeImpossiblePattern)
}
