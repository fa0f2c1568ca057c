// Package errors provides standardized error types for compute kernels.
// ComputeError carries the failing operation and the data type involved, and
// wraps a sentinel so callers can classify failures with errors.Is.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Sentinel causes used to classify compute errors.
var (
	// ErrNotYetImplemented indicates a kernel has no implementation for the
	// requested data type.
	ErrNotYetImplemented = stderrors.New("not yet implemented")

	// ErrInvalidArgument indicates malformed input to a kernel.
	ErrInvalidArgument = stderrors.New("invalid argument")

	// ErrLengthMismatch indicates arrays that must align have different lengths.
	ErrLengthMismatch = stderrors.New("length mismatch")

	// ErrInvalidConfiguration indicates a configuration value out of range.
	ErrInvalidConfiguration = stderrors.New("invalid configuration")
)

// ComputeError represents a failure reported by a compute kernel.
type ComputeError struct {
	Op       string         // Operation name (e.g., "sort", "take", "concat")
	DataType arrow.DataType // Data type involved, if any
	Message  string         // Human-readable error description
	Cause    error          // Underlying cause, usually one of the sentinels
}

// Error implements the error interface
func (e *ComputeError) Error() string {
	if e.DataType != nil {
		return fmt.Sprintf("%s operation failed for type %s: %s", e.Op, e.DataType, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *ComputeError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *ComputeError) Is(target error) bool {
	if ce, ok := target.(*ComputeError); ok {
		return e.Op == ce.Op && e.Message == ce.Message && arrow.TypeEqual(e.DataType, ce.DataType)
	}
	return false
}

// NewNotYetImplementedError reports that op does not support dt.
func NewNotYetImplementedError(op string, dt arrow.DataType) *ComputeError {
	return &ComputeError{
		Op:       op,
		DataType: dt,
		Message:  fmt.Sprintf("data type %s is not supported", dt),
		Cause:    ErrNotYetImplemented,
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *ComputeError {
	return &ComputeError{
		Op:      op,
		Message: message,
		Cause:   ErrInvalidArgument,
	}
}

// NewLengthMismatchError reports two inputs of different lengths.
func NewLengthMismatchError(op string, expected, actual int) *ComputeError {
	return &ComputeError{
		Op:      op,
		Message: fmt.Sprintf("expected length %d, got %d", expected, actual),
		Cause:   ErrLengthMismatch,
	}
}

// NewTypeMismatchError reports inputs whose data types differ.
func NewTypeMismatchError(op string, expected, actual arrow.DataType) *ComputeError {
	return &ComputeError{
		Op:       op,
		DataType: actual,
		Message:  fmt.Sprintf("expected data type %s", expected),
		Cause:    ErrInvalidArgument,
	}
}

// NewColumnNotFoundError reports a reference to a column a table does not have.
func NewColumnNotFoundError(op, column string) *ComputeError {
	return &ComputeError{
		Op:      op,
		Message: fmt.Sprintf("column '%s' not found", column),
		Cause:   ErrInvalidArgument,
	}
}

// NewConfigurationError reports an invalid configuration parameter.
func NewConfigurationError(param string, value any, validOptions []string) *ComputeError {
	msg := fmt.Sprintf("invalid value %v for parameter '%s'", value, param)
	if len(validOptions) > 0 {
		msg += fmt.Sprintf(" (valid options: %s)", strings.Join(validOptions, ", "))
	}
	return &ComputeError{
		Op:      "configuration",
		Message: msg,
		Cause:   ErrInvalidConfiguration,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *ComputeError {
	return &ComputeError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// IsNotYetImplemented reports whether err was raised for an unsupported type.
func IsNotYetImplemented(err error) bool {
	return stderrors.Is(err, ErrNotYetImplemented)
}
