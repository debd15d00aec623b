// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/axoraweb/seo-backend/internal/archive"
	"github.com/axoraweb/seo-backend/internal/jobs"
	"github.com/axoraweb/seo-backend/internal/optimizer"
	"github.com/labstack/echo/v4"
)

// Error codes returned in the "code" field.
const (
	CodeMissingRequiredInput = "MISSING_REQUIRED_INPUT"
	CodeInvalidArchiveFormat = "INVALID_ARCHIVE_FORMAT"
	CodeNoProcessableFiles   = "NO_PROCESSABLE_FILES"
	CodeValidation           = "VALIDATION_ERROR"
	CodeNotFound             = "NOT_FOUND"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrMissingRequiredInput is returned when a request lacks the uploaded file.
var ErrMissingRequiredInput = errors.New("missing required input")

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 error with a specific code
func NewBadRequestError(code, message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: message,
		Details: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// FromError maps package sentinel errors onto API errors. Anything
// unrecognised becomes a 500 carrying fallback as its message.
func FromError(err error, fallback string) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ErrMissingRequiredInput):
		return NewBadRequestError(CodeMissingRequiredInput, "No file provided", nil)
	case errors.Is(err, archive.ErrInvalidArchiveFormat):
		return NewBadRequestError(CodeInvalidArchiveFormat, "Invalid ZIP file format", err)
	case errors.Is(err, optimizer.ErrNoProcessableFiles):
		return NewBadRequestError(CodeNoProcessableFiles, "No processable files found in the ZIP archive", nil)
	case errors.Is(err, jobs.ErrJobNotFound):
		return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Analysis job not found"}
	default:
		return NewInternalError(fallback, err)
	}
}

// ErrorHandler renders any error returned by a handler.
// Usage: e.HTTPErrorHandler = api.ErrorHandler(logger)
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var apiErr *APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = &APIError{
				Status:  httpErr.Code,
				Code:    httpCode(httpErr.Code),
				Message: fmt.Sprintf("%v", httpErr.Message),
			}
		default:
			apiErr = FromError(err, "Internal server error")
		}

		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"code", apiErr.Code,
				"error", err,
			)
		}
		if err := respond(c, apiErr.Status, apiErr); err != nil {
			logger.Error("writing error response", "error", err)
		}
	}
}

func httpCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusRequestEntityTooLarge, http.StatusBadRequest, http.StatusMethodNotAllowed:
		return CodeValidation
	}
	if status >= http.StatusInternalServerError {
		return CodeInternal
	}
	return "HTTP_ERROR"
}
