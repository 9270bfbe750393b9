package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPublish      = errors.New("publish failed")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict indicates an optimistic-lock version mismatch: the record was
// modified between the caller's read and its conditional write. Handlers
// map this to 409; the client is expected to re-issue the request.
func Conflict(resource string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("Conflict: %s data has been modified", resource),
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// PublishFailed wraps an event-publisher error. The mutation that preceded
// the publish is already committed, so callers surface this without
// rolling anything back.
func PublishFailed(err error) *AppError {
	return &AppError{
		Err:     ErrPublish,
		Message: fmt.Sprintf("publishing event: %v", err),
	}
}
