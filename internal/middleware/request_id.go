// Package middleware provides the HTTP middleware chain of the gateway:
// request ids, panic recovery, request logging and response headers.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/crimestats/querygateway/internal/constants"
)

type contextKey string

// RequestIDContextKey is the context key under which the request id is stored.
const RequestIDContextKey contextKey = constants.RequestIDContextKey

// RequestID tags every request with an id. A client-supplied X-Request-ID is
// kept, otherwise a random UUID is generated. The id is echoed in the
// response header and stored in the request context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(constants.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set(constants.HeaderXRequestID, requestID)

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID extracts the request ID from the request context.
// It returns the request ID and a boolean indicating if it was found.
func GetRequestID(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(RequestIDContextKey).(string)
	return requestID, ok
}
