package server

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: message}
}

var errNotFound = newAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found")

// invalidRequest reports a body or parameter that could not be used.
func invalidRequest(err error) *APIError {
	apiErr := newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
	apiErr.Details = err.Error()
	return apiErr
}

// unprocessable reports input that decoded but could not be analyzed.
func unprocessable(err error) *APIError {
	apiErr := newAPIError(http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "Request could not be processed")
	apiErr.Details = err.Error()
	return apiErr
}
