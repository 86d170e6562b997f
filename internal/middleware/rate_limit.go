package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/utils"
)

// RateLimiter decides whether a client may make another request.
type RateLimiter interface {
	Allow(clientID string) bool
}

// RateLimit answers 429 to clients that exceed their request budget.
// Clients are identified by the peer address of the connection, so
// forwarding headers only count when RealIP runs in front of it.
func RateLimit(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := remoteHost(r)

			if !limiter.Allow(clientIP) {
				log.Warn().
					Str("client_ip", clientIP).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("Rate limit exceeded")

				w.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(constants.RetryAfterSeconds))
				utils.Error(w, constants.StatusTooManyRequests, constants.MsgRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// remoteHost returns the host part of r.RemoteAddr.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
