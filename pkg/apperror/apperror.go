package apperror

import (
	"errors"
	"fmt"
)

// Code classifies an application error for the presentation layer.
type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeForbidden    Code = "FORBIDDEN"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL"
)

// AppError represents a structured application error
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new application error
func New(code Code, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// NotFound reports a missing resource. It is a business outcome, never
// silently treated as success.
func NotFound(resourceType, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resourceType), fmt.Sprintf("id: %s", id), nil)
}

// Forbidden wraps an authorization denial.
func Forbidden(message string, cause error) *AppError {
	return New(CodeForbidden, message, "", cause)
}

// Validation reports a malformed payload, detected before authorization so
// an invalid command leaks nothing about target existence.
func Validation(message string) *AppError {
	return New(CodeValidation, message, "", nil)
}

// Conflict reports a state transition the domain refuses.
func Conflict(message string, cause error) *AppError {
	return New(CodeConflict, message, "", cause)
}

// Internal reports an unexpected failure.
func Internal(message string, cause error) *AppError {
	return New(CodeInternal, message, "", cause)
}

// CodeOf extracts the classification from any error, defaulting to internal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
