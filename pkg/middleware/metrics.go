package middleware

import (
	"net/http"
	"time"

	"github.com/ongchi/insitu-logger/pkg/metrics"
)

// RequestMetrics returns middleware that records request counts and latency
// per matched route pattern. Pass nil metrics to disable.
func RequestMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			// Pattern is filled in by the mux during ServeHTTP.
			m.ObserveRequest(r.Pattern, r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
