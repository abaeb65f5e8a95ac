package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"bastion-hq/gateway/pkg/proxy"
	"bastion-hq/gateway/pkg/proxy/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns the
// generic 500 body. The panic value and stack are logged, never returned.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				_ = proxy.WriteErrorResponse(w, http.StatusInternalServerError, types.NewInternalErrorResponse())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
