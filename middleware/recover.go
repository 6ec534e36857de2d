package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
)

const CorrelationHeader = "X-Correlation-ID"

// CorrelationID returns the id assigned to the request by Recover.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(CorrelationContextKey).(string)
	return id
}

// Recover assigns every request a correlation id and turns panics into a
// 500 response carrying that id.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(CorrelationHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), CorrelationContextKey, id))

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic serving request",
						"correlationId", id,
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()))
					writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Reference: "+id)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
