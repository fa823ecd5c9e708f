package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError represents an application error with an HTTP status and context
type AppError struct {
	Code    int                    // HTTP status code
	Message string                 // User-friendly message
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// Body is the JSON payload written for API and HTMX requests
func (e *AppError) Body() fiber.Map {
	body := fiber.Map{"error": e.Message}
	for k, v := range e.Context {
		body[k] = v
	}
	return body
}

func BadRequestError(message string, err error) *AppError {
	return NewAppError(fiber.StatusBadRequest, message, err)
}

func ForbiddenError(message string, err error) *AppError {
	return NewAppError(fiber.StatusForbidden, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(fiber.StatusNotFound, message, err)
}

func ConflictError(message string, err error) *AppError {
	return NewAppError(fiber.StatusConflict, message, err)
}

// UnprocessableError is returned when a draft fails field validation;
// the per-field messages travel in the "errors" context key
func UnprocessableError(message string, fieldErrors map[string]string) *AppError {
	return NewAppError(fiber.StatusUnprocessableEntity, message, nil).
		WithContext("errors", fieldErrors)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(fiber.StatusTooManyRequests, message, nil)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(fiber.StatusInternalServerError, message, err)
}

func BadGatewayError(message string, err error) *AppError {
	return NewAppError(fiber.StatusBadGateway, message, err)
}
