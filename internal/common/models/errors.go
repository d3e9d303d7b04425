package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes shared across the API surface.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnknownEntity        = "UNKNOWN_ENTITY"
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	CodeUnsupportedFormat    = "UNSUPPORTED_FORMAT"
	CodeExportTooLarge       = "EXPORT_TOO_LARGE"
	CodeNotFound             = "NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeBadRequest           = "BAD_REQUEST"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the typed error the API boundary knows how to render as
// { "error": message, "code": code }. Anything that is not an AppError is
// treated as unexpected and becomes a logged 500.
type AppError struct {
	Code    string       `json:"code"`
	Message string       `json:"error"`
	Status  int          `json:"-"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidation(message string, fields ...FieldError) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  fiber.StatusBadRequest,
		Fields:  fields,
	}
}

func NewUnknownEntity() *AppError {
	return &AppError{
		Code:    CodeUnknownEntity,
		Message: "Invalid entity type",
		Status:  fiber.StatusBadRequest,
	}
}

func NewUnsupportedOperation(message string) *AppError {
	return &AppError{
		Code:    CodeUnsupportedOperation,
		Message: message,
		Status:  fiber.StatusBadRequest,
	}
}

func NewUnsupportedFormat() *AppError {
	return &AppError{
		Code:    CodeUnsupportedFormat,
		Message: "Invalid format. Supported formats: csv, xlsx",
		Status:  fiber.StatusBadRequest,
	}
}

func NewExportTooLarge(rows, ceiling int64) *AppError {
	return &AppError{
		Code:    CodeExportTooLarge,
		Message: fmt.Sprintf("Export of %d rows exceeds the limit of %d", rows, ceiling),
		Status:  fiber.StatusRequestEntityTooLarge,
	}
}

func NewNotFound(what string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: what + " not found",
		Status:  fiber.StatusNotFound,
	}
}

func NewForbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  fiber.StatusForbidden,
	}
}

func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  fiber.StatusBadRequest,
	}
}
