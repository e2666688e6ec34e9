// Package exception provides custom error types and error handling utilities
// for the extraction engine. It standardizes errors raised during a sync run
// so callers can categorize them by retry and skip policies.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrCancelRequested is the sentinel returned when the workflow runtime
// requested cancellation between batches. Callers must not retry a run that
// failed with this error.
var ErrCancelRequested = errors.New("cancel requested by workflow runtime")

// ExtractError is a custom error type for failures during extraction.
// It holds the module where the error occurred, a message, the wrapped
// original error, and flags indicating whether it is retryable or skippable.
type ExtractError struct {
	// Module indicates where the error occurred (e.g. "extractor", "batcher", "repository").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error

	isRetryable bool
	isSkippable bool

	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string
}

// NewExtractError creates a new ExtractError instance.
func NewExtractError(module, message string, originalErr error, isSkippable, isRetryable bool) *ExtractError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &ExtractError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  string(buf[:n]),
	}
}

// NewExtractErrorf creates a new ExtractError with a formatted message.
// The error is neither retryable nor skippable; use NewExtractError when the
// flags matter.
func NewExtractErrorf(module, format string, a ...interface{}) *ExtractError {
	return NewExtractError(module, fmt.Sprintf(format, a...), nil, false, false)
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *ExtractError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is retryable.
func (e *ExtractError) IsRetryable() bool {
	return e.isRetryable
}

// IsSkippable returns whether this error is skippable.
func (e *ExtractError) IsSkippable() bool {
	return e.isSkippable
}

// IsCancelRequested determines if an error signals a cooperative cancellation.
func IsCancelRequested(err error) bool {
	return errors.Is(err, ErrCancelRequested)
}

// IsTemporary determines if an error is temporary (e.g. network error,
// transient DB connection issue). For an ExtractError the IsRetryable flag
// takes precedence.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.IsRetryable()
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset")
}

// ExtractErrorMessage extracts a clean message string from an error.
// For ExtractError it returns the Message field instead of the full chain.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}
