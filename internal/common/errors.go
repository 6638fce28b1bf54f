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
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// Pipeline failure taxonomy. None of these abort a batch.
var (
	ErrUnreadableDocument   = errors.New("unreadable document")
	ErrUnsupportedDocument  = errors.New("unsupported document format")
	ErrIncompleteExtraction = errors.New("incomplete extraction")
	ErrDuplicateRecord      = errors.New("duplicate record")
	ErrHashMismatch         = errors.New("hash mismatch")
	ErrNoStoredHash         = errors.New("no stored hash")
	ErrIdentifierNotFound   = errors.New("identifier not found")
	ErrUnmatchedIdentifier  = errors.New("unmatched identifier")
	ErrUnmatchedPairing     = errors.New("unmatched company/amount pairing")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
