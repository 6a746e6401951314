package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures the harvest and sync paths can hit
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeBlocked    ErrorType = "blocked"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error carries a classified failure with its underlying cause
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without an underlying cause
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap attaches a classification to an underlying error
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// TypeOf extracts the classification from an error chain
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeStorage:
		return true
	case ErrorTypeBlocked, ErrorTypeParsing, ErrorTypeNotFound, ErrorTypeConfig, ErrorTypeValidation:
		return false
	default:
		return false
	}
}

// IsRetryableErr checks the classification of an error chain
func IsRetryableErr(err error) bool {
	return IsRetryable(TypeOf(err))
}
