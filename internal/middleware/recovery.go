package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/crimestats/querygateway/internal/constants"
	"github.com/crimestats/querygateway/internal/utils"
)

// Recovery turns a panicking query handler into a JSON 500. When the
// handler had already started the response, the connection is left to be
// closed and nothing more is written.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				logger := log.Logger
				if requestID, ok := GetRequestID(r); ok {
					logger = utils.RequestLogger(requestID, r.Method, r.URL.Path)
				}
				logger.Error().
					Interface("panic", recovered).
					Str("query", r.URL.RawQuery).
					Bool("response_started", ww.Status() != 0).
					Str("stack", string(debug.Stack())).
					Msg(constants.LogEventPanic)

				if ww.Status() == 0 {
					utils.InternalServerError(ww, nil)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
