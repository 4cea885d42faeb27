// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/circuit"
	"github.com/gpokora/FA-Wire-Tool-sub002/internal/export"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromDomainError maps the core error taxonomy onto API responses:
// configuration errors are the caller's fault, emission errors are local
// to one format and reported as server-side failures.
func FromDomainError(err error) *APIError {
	var ce *circuit.ConfigError
	if errors.As(err, &ce) {
		return &APIError{
			Status:  http.StatusBadRequest,
			Code:    "CONFIGURATION_ERROR",
			Message: ce.Error(),
		}
	}
	var ee *export.EmissionError
	if errors.As(err, &ee) {
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "EMISSION_ERROR",
			Message: ee.Error(),
		}
	}
	return NewInternalError("operation failed", err)
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = FromDomainError(err)
	}

	if !c.Response().Committed {
		c.JSON(apiErr.Status, apiErr)
	}
}
