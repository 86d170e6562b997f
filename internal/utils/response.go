// Package utils provides utility functions and helpers for the application.
// This file implements the response conventions shared by every endpoint.
//
// The response system includes:
//   - Raw JSON payloads for successful queries (a bare array of row objects)
//   - A single-field {"error": "..."} body for every failure
//   - Convenience functions for the common status codes
//
// Dashboard clients index rows by their column aliases directly, so
// successful payloads are never wrapped in an envelope.
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/constants"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"` // A human-readable error message
}

// JSON sends a JSON response with the given status code and data.
// The data is serialized as-is, without an envelope.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The data to include in the response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	SendJSON(w, statusCode, data)
}

// Rows sends a 200 response carrying query result rows.
// A nil result is sent as an empty array, never as null.
//
// Parameters:
//   - w: The HTTP response writer
//   - rows: The result rows, keyed by column alias
func Rows(w http.ResponseWriter, rows []map[string]interface{}) {
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	SendJSON(w, constants.StatusOK, rows)
}

// Error sends an error response with the given status code and message.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - message: A human-readable error message
func Error(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, ErrorResponse{Error: message})
}

// ErrorFromAppError sends an error response based on an AppError.
// Only the user-facing message leaves the process; DevInfo is logged for
// server errors.
//
// Parameters:
//   - w: The HTTP response writer
//   - err: The application error
func ErrorFromAppError(w http.ResponseWriter, err *AppError) {
	if err.StatusCode >= constants.StatusInternalServerError {
		log.Error().
			Err(err.Err).
			Str("dev_info", err.DevInfo).
			Int("status", err.StatusCode).
			Msg("Request failed")
	}

	Error(w, err.StatusCode, err.Message)
}

// SendJSON is a helper function to send JSON data with proper headers.
// This handles JSON marshaling and error handling for all response types.
//
// Parameters:
//   - w: The HTTP response writer
//   - statusCode: The HTTP status code
//   - data: The data to marshal to JSON and send
func SendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	// Marshal first so a failure can still change the status code
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(constants.StatusInternalServerError)
		if _, err := w.Write([]byte(`{"error":"Failed to generate response"}`)); err != nil {
			log.Error().Err(err).Msg("Failed to write error response")
		}
		return
	}

	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		// Log write errors but don't try to recover
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// MethodNotAllowed sends a 405 Method Not Allowed response.
//
// Parameters:
//   - w: The HTTP response writer
func MethodNotAllowed(w http.ResponseWriter) {
	Error(w, constants.StatusMethodNotAllowed, constants.MsgMethodNotAllowed)
}

// InternalServerError sends a 500 Internal Server Error response.
//
// Parameters:
//   - w: The HTTP response writer
//   - err: The error that occurred (logged but not exposed to the client)
func InternalServerError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Internal server error")
	Error(w, constants.StatusInternalServerError, constants.MsgInternalServerError)
}

// ServiceUnavailable sends a 503 Service Unavailable response.
//
// Parameters:
//   - w: The HTTP response writer
//   - message: A human-readable error message (falls back to a default message if empty)
func ServiceUnavailable(w http.ResponseWriter, message string) {
	if message == "" {
		message = constants.MsgServiceUnavailable
	}
	Error(w, constants.StatusServiceUnavailable, message)
}
