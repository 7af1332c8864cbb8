package common

import (
	"errors"
	"net/http"
)

// Common error types
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")
	ErrValidation     = errors.New("validation error")

	// ErrGuardViolation means the acting user has no eligible ride in the
	// state a transition requires.
	ErrGuardViolation = errors.New("guard violation")
	// ErrStateConflict means a concurrent transition raced and lost.
	ErrStateConflict = errors.New("state conflict")
	// ErrConfigMissing means no active rate config exists for a country.
	ErrConfigMissing = errors.New("rate config missing")
)

// Machine-readable error codes carried in the response envelope.
const (
	CodeGuardViolation = "GUARD_VIOLATION"
	CodeStateConflict  = "STATE_CONFLICT"
	CodeValidation     = "VALIDATION_ERROR"
	CodeConfigMissing  = "CONFIG_MISSING"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Err       error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped sentinel for errors.Is checks
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Err:     err,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Message: message,
		Err:     ErrUnauthorized,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    http.StatusForbidden,
		Message: message,
		Err:     ErrForbidden,
	}
}

func NewBadRequestError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     ErrInternalServer,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:      http.StatusBadRequest,
		ErrorCode: CodeValidation,
		Message:   message,
		Err:       ErrValidation,
	}
}

// NewGuardViolationError signals that the actor has no eligible ride for the
// attempted action. Surfaced as 403, never as a silent no-op.
func NewGuardViolationError(message string) *AppError {
	return &AppError{
		Code:      http.StatusForbidden,
		ErrorCode: CodeGuardViolation,
		Message:   message,
		Err:       ErrGuardViolation,
	}
}

// NewStateConflictError signals that a concurrent transition won the race,
// e.g. the ride was already accepted by another driver.
func NewStateConflictError(message string) *AppError {
	return &AppError{
		Code:      http.StatusConflict,
		ErrorCode: CodeStateConflict,
		Message:   message,
		Err:       ErrStateConflict,
	}
}

// NewConfigMissingError signals a server-side configuration gap (no regional
// rate config for the rider's country). Surfaced as service-unavailable so it
// is never mistaken for user error or silently defaulted.
func NewConfigMissingError(message string) *AppError {
	return &AppError{
		Code:      http.StatusServiceUnavailable,
		ErrorCode: CodeConfigMissing,
		Message:   message,
		Err:       ErrConfigMissing,
	}
}
