package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeEmptyContent    = "EMPTY_CONTENT"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeRemoteFault     = "REMOTE_FAULT"
	CodeValidation      = "VALIDATION_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewUnauthenticatedError constructs an error for operations attempted
// without a signed-in identity.
func NewUnauthenticatedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NewEmptyContentError constructs an error for a blank post or comment body.
func NewEmptyContentError(what string) *AppError {
	return &AppError{
		Code:    CodeEmptyContent,
		Message: fmt.Sprintf("%s cannot be empty", what),
	}
}

// NewNotFoundError constructs an error for a missing document.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewForbiddenError constructs an error for actions on resources the actor
// does not own.
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NewRemoteFaultError wraps an infrastructure failure from the store or
// identity backend.
func NewRemoteFaultError(err error) *AppError {
	return &AppError{
		Code:    CodeRemoteFault,
		Message: "Internal server error",
		Err:     err,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// ErrorCode extracts the application error code from err, or "" when err is
// not an AppError.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given application error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// HTTPStatus maps an application error to its HTTP status code.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case CodeEmptyContent, CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
