// Package recover provides panic recovery middleware for the HTTP
// transport, adapted from the protocol-agnostic recover middleware this
// service's predecessor used for its RPC handler chain. A recovered panic
// is not one of the four contract failures; it surfaces as a transport
// 500, matching the error handling design's split between client-facing
// failures and programming errors.
package recover

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// New returns middleware that recovers from panics in the wrapped
// handler, logs the stack trace with logger (or slog.Default() if nil),
// and replies with a 500 instead of crashing the process.
func New(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
