package middleware

import (
	"net/http"

	"github.com/taskwise/taskwise/internal/metrics"
)

// Metrics returns a middleware that counts responses by status code.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			recorder.RecordHTTPStatus(wrapped.status)
		})
	}
}
