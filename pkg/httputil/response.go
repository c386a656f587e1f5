// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Content types written by the gateway.
const (
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "text/xml; charset=utf-8"
)

// Error codes of gateway error responses.
const (
	CodeBadRequest         = "BadRequest"
	CodeNotFound           = "NotFound"
	CodeRequestTooLarge    = "RequestTooLarge"
	CodeInternalError      = "InternalError"
	CodeServiceUnavailable = "ServiceUnavailable"
)

// ErrorResponse is the body of every error the gateway reports itself.
type ErrorResponse struct {
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
	Details          any    `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteRaw writes an already encoded body.
func WriteRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, errCode, description string) {
	WriteJSON(w, status, ErrorResponse{ErrorCode: errCode, ErrorDescription: description})
}

// WriteErrorWithDetails writes a JSON error response with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, errCode, description string, details any) {
	WriteJSON(w, status, ErrorResponse{ErrorCode: errCode, ErrorDescription: description, Details: details})
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 Bad Request error response.
func WriteBadRequest(w http.ResponseWriter, description string) {
	WriteError(w, http.StatusBadRequest, CodeBadRequest, description)
}

// WriteNotFound writes a 404 Not Found error response.
func WriteNotFound(w http.ResponseWriter, description string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, description)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, description string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, description)
}

// WriteServiceUnavailable writes a 503 Service Unavailable response.
func WriteServiceUnavailable(w http.ResponseWriter, description string) {
	WriteError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, description)
}
