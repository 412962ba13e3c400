package utils

import (
	"errors"
	"fmt"
)

// ValidationError represents an error occurring during input validation.
// The message names the violated concept ("confidence", "balance", "length")
// so callers can branch on it.
type ValidationError struct {
	Message string
}

// Error returns the error message string.
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError with a specific message.
func NewValidationError(message string) error {
	return &ValidationError{
		Message: message,
	}
}

// NewValidationErrorf creates a new ValidationError with a formatted message.
func NewValidationErrorf(format string, args ...interface{}) error {
	return &ValidationError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ServiceUnavailableError represents a collaborator failure (persistence,
// broadcast, predictor). The engines propagate these without retrying;
// retry and backoff belong to the collaborator.
type ServiceUnavailableError struct {
	Service string
	Err     error
}

// Error returns the error message string.
func (e *ServiceUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

// Unwrap returns the underlying collaborator error.
func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// NewServiceUnavailableError wraps a collaborator failure.
func NewServiceUnavailableError(service string, err error) error {
	return &ServiceUnavailableError{Service: service, Err: err}
}

// IsServiceUnavailable reports whether err is (or wraps) a
// ServiceUnavailableError.
func IsServiceUnavailable(err error) bool {
	var se *ServiceUnavailableError
	return errors.As(err, &se)
}
