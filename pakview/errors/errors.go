package errors

import (
	stderrors "errors"
	"fmt"
)

// Error types for pakview operations
var (
	// ErrArchiveNotFound is returned when the archive path does not exist
	ErrArchiveNotFound = &PakError{Code: "ARCHIVE_NOT_FOUND", Message: "archive not found"}

	// ErrUnsupportedArchive is returned when the path is not a regular file with a recognized extension
	ErrUnsupportedArchive = &PakError{Code: "UNSUPPORTED_ARCHIVE", Message: "unsupported archive"}

	// ErrListFailed is returned when the external listing tool could not be run
	ErrListFailed = &PakError{Code: "LIST_FAILED", Message: "failed to run listing tool"}

	// ErrListTimeout is returned when the listing tool did not exit before the deadline
	ErrListTimeout = &PakError{Code: "LIST_TIMEOUT", Message: "listing tool timed out"}

	// ErrDirectoryNotFound is returned when a directory is not present in the archive tree
	ErrDirectoryNotFound = &PakError{Code: "DIRECTORY_NOT_FOUND", Message: "directory not found"}

	// ErrCache is returned when the listing cache cannot be read or written
	ErrCache = &PakError{Code: "CACHE_FAILED", Message: "listing cache failure"}
)

// PakError represents a structured error in pakview operations
type PakError struct {
	Code    string                 // Error code for programmatic handling
	Message string                 // Human-readable error message
	Cause   error                  // Underlying error, if any
	Details map[string]interface{} // Additional context
}

// Error implements the error interface
func (e *PakError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	if len(e.Details) > 0 {
		return fmt.Sprintf("[%s] %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PakError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a PakError carrying the same code, so that
// errors.Is(err, ErrArchiveNotFound) holds for derived errors.
func (e *PakError) Is(target error) bool {
	t, ok := target.(*PakError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds a cause to the error
func (e *PakError) WithCause(cause error) *PakError {
	return &PakError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
		Details: e.Details,
	}
}

// WithDetail adds a detail key-value pair to the error
func (e *PakError) WithDetail(key string, value interface{}) *PakError {
	details := make(map[string]interface{})
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &PakError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}

// WithMessage overrides the error message
func (e *PakError) WithMessage(message string) *PakError {
	return &PakError{
		Code:    e.Code,
		Message: message,
		Cause:   e.Cause,
		Details: e.Details,
	}
}

// IsPakError checks if an error is, or wraps, a PakError
func IsPakError(err error) bool {
	var pakErr *PakError
	return stderrors.As(err, &pakErr)
}

// GetErrorCode extracts the error code from a PakError anywhere in the chain
func GetErrorCode(err error) string {
	var pakErr *PakError
	if stderrors.As(err, &pakErr) {
		return pakErr.Code
	}
	return ""
}
