package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/http/session"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under repoview.SessionKey.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// NOTE(dlk): a session that cannot be decoded is replaced by a fresh one,
			// so the error is not fatal to the request.
			s, _ := store.GetSession(r)
			ctx := context.WithValue(r.Context(), repoview.SessionKey, s)
			h.ServeHTTP(w, r.Clone(ctx))
		})
	}
}
