package middleware

import (
	"net/http"
	"strconv"
	"time"

	"foldervault/internal/metrics"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Metrics observes request latency labelled by the matched route pattern,
// so ids in paths do not explode label cardinality.
func Metrics(m *metrics.Metrics, mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			_, pattern := mux.Handler(r)
			if pattern == "" {
				pattern = "unmatched"
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			m.RequestDuration.
				WithLabelValues(r.Method, pattern, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
