package middleware

import (
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/xy-planning-network/repoview"
	"github.com/xy-planning-network/repoview/logger"
)

// maskedKeys are query parameters whose values never reach a log.
var maskedKeys = []string{"password", "token"}

const maskedVal = "xxxxxx"

// LogRequest logs the request's method, requested URL, and originating IP address
// using the enclosed implementation of logger.Logger,
// alongside the response status, bytes written, duration and request ID.
//
// LogRequest scrubs the values for the following query keys:
//   - password
//   - token
//
// If logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uri := r.URL.Path
			q := r.URL.Query()
			for _, k := range maskedKeys {
				if q.Has(k) {
					q.Set(k, maskedVal)
				}
			}

			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			strs := []string{r.Method, uri}
			if ip, ok := r.Context().Value(repoview.IpAddrKey).(string); ok {
				strs = append([]string{ip}, strs...)
			}

			m := httpsnoop.CaptureMetrics(h, w, r)

			data := map[string]any{
				"status":     m.Code,
				"bytes":      m.Written,
				"durationMs": m.Duration.Milliseconds(),
			}
			if id, ok := r.Context().Value(repoview.RequestIDKey).(string); ok {
				data["requestID"] = id
			}

			ls.Info(strings.Join(strs, " "), &logger.LogContext{Data: data})
		})
	}
}
