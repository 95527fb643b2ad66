package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "courtside/pkg/errors"
	httputil "courtside/pkg/http"
	"courtside/pkg/logger"
)

// Recovery turns a handler panic into the INTERNAL_ERROR envelope. A panic
// inside a store transaction has already rolled it back.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("Panic recovered",
						"request_id", RequestID(r.Context()),
						"caller", callerID(r),
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					if writeErr := httputil.WriteError(w, apperrors.Internal("panic", nil)); writeErr != nil {
						log.Error("failed to write panic response", "error", writeErr)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
