// Package response writes JSON bodies and JSON error envelopes.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse represents validation errors
type ValidationErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Fields  map[string][]string `json:"fields"`
}

// RenderError renders a standard error response
func RenderError(w http.ResponseWriter, statusCode int, err error) {
	RenderErrorWithCode(w, statusCode, err, "")
}

// RenderErrorWithCode renders an error with a specific error code
func RenderErrorWithCode(w http.ResponseWriter, statusCode int, err error, code string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		RenderValidationError(w, verrs)
		return
	}

	if code == "" {
		code = errorCodeFromStatus(statusCode)
	}

	writeJSON(w, statusCode, &ErrorResponse{
		Error:   "error",
		Message: err.Error(),
		Code:    code,
	})
}

// RenderValidationError renders validator failures keyed by JSON field name
func RenderValidationError(w http.ResponseWriter, verrs validator.ValidationErrors) {
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
	}
	writeJSON(w, http.StatusUnprocessableEntity, &ValidationErrorResponse{
		Error:   "validation_failed",
		Message: "The request contains invalid data",
		Code:    "rest_invalid_param",
		Fields:  fields,
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// RenderBadRequest renders a 400 Bad Request error
func RenderBadRequest(w http.ResponseWriter, message string) {
	RenderError(w, http.StatusBadRequest, errors.New(message))
}

// RenderUnauthorized renders a 401 Unauthorized error
func RenderUnauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Authentication required"
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="wp-schema"`)
	RenderError(w, http.StatusUnauthorized, errors.New(message))
}

// RenderForbidden renders a 403 Forbidden error
func RenderForbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Sorry, you are not allowed to do that."
	}
	RenderError(w, http.StatusForbidden, errors.New(message))
}

// RenderNotFound renders a 404 Not Found error
func RenderNotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RenderError(w, http.StatusNotFound, errors.New(message))
}

// RenderInternalError renders a 500 without exposing err to the caller
func RenderInternalError(w http.ResponseWriter, err error) {
	RenderErrorWithCode(w, http.StatusInternalServerError, errors.New("Internal server error"), "")
}

func errorCodeFromStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return "rest_bad_request"
	case http.StatusUnauthorized:
		return "rest_not_logged_in"
	case http.StatusForbidden:
		return "rest_forbidden"
	case http.StatusNotFound:
		return "rest_not_found"
	case http.StatusMethodNotAllowed:
		return "rest_no_route"
	case http.StatusUnprocessableEntity:
		return "rest_invalid_param"
	case http.StatusTooManyRequests:
		return "rest_too_many_requests"
	case http.StatusServiceUnavailable:
		return "rest_unavailable"
	case http.StatusGatewayTimeout:
		return "rest_timeout"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return "error"
	}
}
