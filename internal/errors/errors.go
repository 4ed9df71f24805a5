// Package errors provides structured error types for the Engagemark system.
// All errors include a category, code, message, and retryable flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by system component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryIngest     ErrorCategory = "INGEST"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryBenchmark  ErrorCategory = "BENCHMARK"
	ErrCategoryReport     ErrorCategory = "REPORT"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeInvalidFieldSpec = "INVALID_FIELD_SPEC"
	CodeInvalidKeyMode   = "INVALID_KEY_MODE"
	CodeEmptyBatch       = "EMPTY_BATCH"

	// Ingest codes
	CodeSourceOpenFailed = "SOURCE_OPEN_FAILED"
	CodeMalformedRow     = "MALFORMED_ROW"

	// Storage codes
	CodeWriteFailed    = "WRITE_FAILED"
	CodeReadFailed     = "READ_FAILED"
	CodeObjectNotFound = "OBJECT_NOT_FOUND"
	CodeCorruptSegment = "CORRUPT_SEGMENT"

	// Benchmark codes
	CodeStoreEmpty     = "STORE_EMPTY"
	CodeOperationAbort = "OPERATION_ABORT"

	// Report codes
	CodeRenderFailed = "RENDER_FAILED"
	CodeUploadFailed = "UPLOAD_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// EngagemarkError is the structured error type used throughout the system.
type EngagemarkError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Details   map[string]interface{}
	Cause     error
	Retryable bool
}

// Error returns a formatted error string.
func (e *EngagemarkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *EngagemarkError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *EngagemarkError) Is(target error) bool {
	var t *EngagemarkError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new EngagemarkError.
func New(category ErrorCategory, code, message string) *EngagemarkError {
	return &EngagemarkError{
		Category:  category,
		Code:      code,
		Message:   message,
		Retryable: isRetryable(category, code),
	}
}

// Wrap creates a new EngagemarkError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *EngagemarkError {
	return &EngagemarkError{
		Category:  category,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryable(category, code),
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *EngagemarkError) WithDetails(details map[string]interface{}) *EngagemarkError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsRetryable checks whether an error (or its chain) is retryable.
func IsRetryable(err error) bool {
	var ee *EngagemarkError
	if errors.As(err, &ee) {
		return ee.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not an EngagemarkError.
func GetCategory(err error) ErrorCategory {
	var ee *EngagemarkError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not an EngagemarkError.
func GetCode(err error) string {
	var ee *EngagemarkError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// isRetryable determines if an error code is retryable. Transient I/O against
// storage backends retries; everything else surfaces immediately.
func isRetryable(category ErrorCategory, code string) bool {
	switch {
	case category == ErrCategoryStorage && code == CodeWriteFailed:
		return true
	case category == ErrCategoryStorage && code == CodeReadFailed:
		return true
	case category == ErrCategoryReport && code == CodeUploadFailed:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *EngagemarkError {
	return New(ErrCategoryValidation, code, message)
}

func NewIngestError(code, message string, cause error) *EngagemarkError {
	return Wrap(ErrCategoryIngest, code, message, cause)
}

func NewStorageError(code, message string, cause error) *EngagemarkError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewBenchmarkError(code, message string) *EngagemarkError {
	return New(ErrCategoryBenchmark, code, message)
}

func NewReportError(code, message string, cause error) *EngagemarkError {
	return Wrap(ErrCategoryReport, code, message, cause)
}

func NewInternalError(message string, cause error) *EngagemarkError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
