package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/repoview"
)

const requestIDHeader = "X-Request-ID"

// RequestID adds a uuid to the request context under repoview.RequestIDKey
// and echoes it back in the X-Request-ID response header.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), repoview.RequestIDKey, id)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
