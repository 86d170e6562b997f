package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/crimestats/querygateway/internal/utils"
)

// unmatchedRoute labels requests no route pattern matched, keeping the
// metrics label set bounded.
const unmatchedRoute = "unmatched"

// RequestObserver receives the outcome of every served request.
type RequestObserver interface {
	ObserveRequest(route, method string, status int, duration time.Duration)
}

// RequestLogger logs every request once it has been served and reports it
// to the observer, which may be nil.
func RequestLogger(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			latency := time.Since(startTime)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			requestID, _ := GetRequestID(r)
			utils.LogHTTPRequest(requestID, r.Method, r.URL.Path, getClientIP(r), r.UserAgent(), status, latency)

			if observer != nil {
				observer.ObserveRequest(routePattern(r), r.Method, status, latency)
			}
		})
	}
}

// routePattern returns the chi pattern that served r, e.g. "/shootings".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// getClientIP extracts the client IP address from the request,
// taking into account common proxy headers.
func getClientIP(r *http.Request) string {
	// Check for X-Forwarded-For header
	xForwardedFor := r.Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		// Use the leftmost IP in the list (client IP)
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check for X-Real-IP header
	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}

	return remoteHost(r)
}
