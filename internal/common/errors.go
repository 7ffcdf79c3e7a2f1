package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrValidation marks structurally invalid configuration, e.g. an
	// extraction rule whose pattern does not compile. Rejected at write
	// time; never reaches extraction.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks lookups or updates of an unknown checklist id.
	ErrNotFound = errors.New("resource not found")

	// ErrTimeout marks an external OCR invocation that exceeded its
	// deadline. Fatal for that one document, non-fatal for the batch.
	ErrTimeout = errors.New("external call timed out")

	// ErrMalformedUpstream marks unparsable output from the external OCR
	// process. Recovered locally by treating the raw output as plain text;
	// never propagated as a hard failure.
	ErrMalformedUpstream = errors.New("malformed upstream output")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ValidationError(message string) error {
	return NewAppError("VALIDATION_ERROR", message, ErrValidation)
}

func ValidationErrorf(format string, args ...interface{}) error {
	return ValidationError(fmt.Sprintf(format, args...))
}

func NotFoundError(message string) error {
	return NewAppError("NOT_FOUND", message, ErrNotFound)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
