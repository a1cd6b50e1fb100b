package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// AppError is the single error type the HTTP boundary understands. Domain and
// storage failures are translated into it exactly once, in the services; raw
// storage errors never reach a client.
type AppError struct {
	Code    int
	Message string
	Fields  map[string][]string
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

func NewBadRequest(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Message: message}
}

func NewValidationError(fields map[string][]string) *AppError {
	return &AppError{
		Code:    fiber.StatusBadRequest,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// NewUnauthorized always carries the same generic message; the concrete reason
// stays in the logs.
func NewUnauthorized() *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Message: "Invalid or missing credentials"}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: fiber.StatusForbidden, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: fiber.StatusConflict, Message: message}
}

func NewUnsupportedMediaType() *AppError {
	return &AppError{Code: fiber.StatusUnsupportedMediaType, Message: "Request body must be JSON"}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Message: "Internal server error", Err: err}
}
