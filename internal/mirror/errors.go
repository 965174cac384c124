package mirror

import (
	"errors"
	"fmt"
)

// InternalErrorMessage is what users see for an InternalError; the detail goes to the log.
const InternalErrorMessage = "Internal error, inspect the log for details"

// UsageError is a user-correctable problem: wrong selection, unsupported geometry or a
// degenerate mirror reference. Its message is shown to the user verbatim.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// InternalError means an assumption about the sketch was violated.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return "internal error: " + e.Op
	}
	return fmt.Sprintf("internal error: %s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

// internal wraps err as an InternalError unless it is already classified.
func internal(op string, err error) error {
	var usage *UsageError
	var inner *InternalError
	if errors.As(err, &usage) || errors.As(err, &inner) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

// IsUsageError reports whether err is user-correctable.
func IsUsageError(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}

// Describe returns the message to show a user for err.
func Describe(err error) string {
	var usage *UsageError
	if errors.As(err, &usage) {
		return usage.Msg
	}
	return InternalErrorMessage
}
