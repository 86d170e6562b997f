// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling and
// messaging. Client-facing messages are returned in the "error" field of the
// JSON error body.
package constants

// Error Types define the categories of errors that can occur in the application.
const (
	// ErrorBadRequest indicates that the request was malformed or invalid.
	ErrorBadRequest = "invalid request"

	// ErrorValidation indicates that a query parameter failed validation.
	ErrorValidation = "validation error"

	// ErrorStorage indicates that the storage engine failed to execute a query.
	ErrorStorage = "storage error"

	// ErrorInternalServer indicates an unexpected internal error.
	ErrorInternalServer = "internal server error"
)

// User-Facing Error Messages
const (
	// MsgParameterRequiredFormat formats the missing-parameter message, e.g. "Year query parameter is required".
	MsgParameterRequiredFormat = "%s query parameter is required"

	// MsgStorageFailure replaces the storage engine's message when storage errors are redacted.
	MsgStorageFailure = "The incident database could not answer the query"

	// MsgRateLimited is returned with 429 responses.
	MsgRateLimited = "Rate limit exceeded, please try again later"

	// MsgInternalServerError provides a generic server error message.
	MsgInternalServerError = "An internal server error occurred"

	// MsgServiceUnavailable is returned by the health check when the store cannot be reached.
	MsgServiceUnavailable = "Service is not healthy"

	// MsgMethodNotAllowed indicates that the HTTP method is not supported for the endpoint.
	MsgMethodNotAllowed = "This method is not allowed for this resource"
)

// Logger Constants define values used for structured logging.
const (
	LogEventHTTPRequest = "HTTP Request"
	LogEventDBQuery     = "Database query executed"
	LogEventPanic       = "Panic recovered in request handler"

	// LogRedactedValue replaces secrets when configuration is logged.
	LogRedactedValue = "[REDACTED]"
)

// Context Key Names
const (
	RequestIDContextKey = "request_id"
)
