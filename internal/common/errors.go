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

// Error taxonomy. Capability, decode and remote-call errors are terminal for
// the current call and surfaced verbatim with a method tag; they are never
// retried. Validation findings are warnings on the record, not errors.
var (
	ErrMissingCapability = errors.New("required capability unavailable")
	ErrDecode            = errors.New("decode error")
	ErrRemoteCall        = errors.New("remote call failed")
	ErrInvalidInput      = errors.New("invalid input")
)

// NewAppError builds an AppError with a stable code for logs.
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
