// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for agent consumption.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants — uppercase, underscore-separated, stable across minor versions.
const (
	TaskNotFound       = "TASK_NOT_FOUND"
	AmbiguousTaskID    = "AMBIGUOUS_TASK_ID"
	ProjectNotFound    = "PROJECT_NOT_FOUND"
	ProjectExists      = "PROJECT_ALREADY_EXISTS"
	InvalidInput       = "INVALID_INPUT"
	InvalidStatus      = "INVALID_STATUS"
	InvalidDate        = "INVALID_DATE"
	InvalidDuration    = "INVALID_DURATION"
	InvalidWorkingDays = "INVALID_WORKING_DAYS"
	InvalidConstraint  = "INVALID_CONSTRAINT"
	InvalidTaskID      = "INVALID_TASK_ID"
	DependencyNotFound = "DEPENDENCY_NOT_FOUND"
	DependencyCycle    = "DEPENDENCY_CYCLE"
	SelfReference      = "SELF_REFERENCE"
	PinnedStatus       = "PINNED_STATUS"
	StatusInUse        = "STATUS_IN_USE"
	NoChanges          = "NO_CHANGES"
	StatusConflict     = "STATUS_CONFLICT"
	ConfirmationReq    = "CONFIRMATION_REQUIRED"
	InvalidSortField   = "INVALID_SORT_FIELD"
	UnsupportedStorage = "UNSUPPORTED_STORAGE"
	InternalError      = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any

	cause error
}

func (e *Error) Error() string { return e.Message }

// Unwrap returns the error this one was built from, if any.
func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap turns err into an Error with code, keeping err as the cause.
// The message is err's own text.
func Wrap(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), cause: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// As returns the structured error in err's chain. Any other error is
// reported as an InternalError carrying its text.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(InternalError, err)
}

// CodeOf returns the code of the structured error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// SilentError signals an exit code without additional output.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
