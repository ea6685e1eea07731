// Package errors provides custom error types for valreport.
// It defines coded errors so HTTP handlers and the CLI can map failures consistently.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode string

// Error codes for different error categories
const (
	// General errors (1xxx)
	ErrCodeInternal     ErrorCode = "E1000"
	ErrCodeValidation   ErrorCode = "E1001"
	ErrCodeNotFound     ErrorCode = "E1002"
	ErrCodeTimeout      ErrorCode = "E1003"
	ErrCodeUnauthorized ErrorCode = "E1004"
	ErrCodeTooLarge     ErrorCode = "E1005"

	// Report generation errors (2xxx)
	ErrCodeRenderFailed   ErrorCode = "E2001"
	ErrCodeEncodeFailed   ErrorCode = "E2002"
	ErrCodeAssembleFailed ErrorCode = "E2003"
	ErrCodeInvalidRecord  ErrorCode = "E2004"
	ErrCodeRenderBusy     ErrorCode = "E2005"
	ErrCodeInterrupted    ErrorCode = "E2006"

	// Valuation backend errors (3xxx)
	ErrCodeBackendRequest  ErrorCode = "E3001"
	ErrCodeBackendStatus   ErrorCode = "E3002"
	ErrCodeBackendNotFound ErrorCode = "E3003"
	ErrCodeBackendDisabled ErrorCode = "E3004"

	// Database errors (5xxx)
	ErrCodeDBConnection ErrorCode = "E5001"
	ErrCodeDBQuery      ErrorCode = "E5002"
	ErrCodeDBMigration  ErrorCode = "E5003"

	// Configuration errors (6xxx)
	ErrCodeConfigNotFound ErrorCode = "E6001"
	ErrCodeConfigInvalid  ErrorCode = "E6002"
	ErrCodeConfigParse    ErrorCode = "E6003"
)

// ExitCodeConfigValidation is returned by the CLI when configuration validation fails
const ExitCodeConfigValidation = 2

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for the error
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeBackendNotFound:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeInvalidRecord:
		return http.StatusBadRequest
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeBackendRequest, ErrCodeBackendStatus:
		return http.StatusBadGateway
	case ErrCodeRenderBusy, ErrCodeBackendDisabled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// ErrInternal creates an internal server error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrInvalidRecord creates an error for a record that cannot be decoded
func ErrInvalidRecord(err error) *AppError {
	return Wrap(ErrCodeInvalidRecord, "invalid valuation record", err)
}

// IsAppError reports whether err is, or wraps, an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// AsAppError finds the first AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or ErrCodeInternal
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
