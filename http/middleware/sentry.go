package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/repoview"
)

// ReportPanic encloses the env and returns an Adapter that,
// outside of development, recovers panics, reports them to Sentry
// and responds with http.StatusInternalServerError.
//
// In development, panics are left alone so they surface loudly.
func ReportPanic(env repoview.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(handler http.Handler) http.Handler {
		return sh.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// NOTE(dlk): sentryhttp swallows the panic without responding,
					// so answer before handing it along
					w.WriteHeader(http.StatusInternalServerError)
					panic(err)
				}
			}()

			handler.ServeHTTP(w, r)
		}))
	}
}
