// Package errors provides structured error types for islandlink.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three families:
//   - Input validation (INVALID_INPUT, INVALID_RECORD, GROUP_TOO_LARGE): the caller
//     supplied something the solver refuses to work with. Retrying without changing
//     the input reproduces the failure.
//   - Invariant violations (INVARIANT_VIOLATION, ZERO_POPULATION): the data or the
//     search produced a state that must abort the current group.
//   - Operational (NOT_FOUND, INTERNAL_ERROR, UNSUPPORTED).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeGroupTooLarge, "group has %d sites (max %d)", n, max)
//	if errors.Is(err, errors.ErrCodeGroupTooLarge) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidRecord, origErr, "line %d", lineNo)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidRecord Code = "INVALID_RECORD"
	ErrCodeGroupTooLarge Code = "GROUP_TOO_LARGE"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Invariant violations
	ErrCodeInvariant      Code = "INVARIANT_VIOLATION"
	ErrCodeZeroPopulation Code = "ZERO_POPULATION"

	// Operational errors
	ErrCodeNotFound    Code = "NOT_FOUND"
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
// It walks the whole chain, so a group-level wrapper does not hide the
// code of the failure it wraps.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
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

// RootCode returns the innermost error code in the chain. The pipeline wraps
// solver failures with the group index, and callers mapping errors to exit
// codes or HTTP statuses care about the original cause.
func RootCode(err error) Code {
	var code Code
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			break
		}
		code = e.Code
		err = e.Cause
	}
	return code
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var ge *GroupError
	if errors.As(err, &ge) {
		return fmt.Sprintf("island group %d: %s", ge.Group, UserMessage(ge.Err))
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	switch RootCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRecord, ErrCodeGroupTooLarge, ErrCodeInvalidFormat, ErrCodeInvalidConfig:
		return true
	}
	return false
}

// GroupError attaches the 1-based group index to a failure so that reports
// can point at the offending group in a multi-group input.
type GroupError struct {
	Group int
	Err   error
}

// Error implements the error interface.
func (e *GroupError) Error() string {
	return fmt.Sprintf("island group %d: %v", e.Group, e.Err)
}

// Unwrap returns the wrapped error.
func (e *GroupError) Unwrap() error { return e.Err }

// InGroup wraps err with the group index. It returns nil for a nil error.
func InGroup(group int, err error) error {
	if err == nil {
		return nil
	}
	return &GroupError{Group: group, Err: err}
}

// GroupOf returns the group index recorded in err, or 0 if there is none.
func GroupOf(err error) int {
	var ge *GroupError
	if errors.As(err, &ge) {
		return ge.Group
	}
	return 0
}
