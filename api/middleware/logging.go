package middleware

import (
	"net/http"
	"time"

	"github.com/megano/shop-backend/pkg/logger"
)

type responseTrace struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (t *responseTrace) WriteHeader(code int) {
	if t.status == 0 {
		t.status = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTrace) Write(b []byte) (int, error) {
	if t.status == 0 {
		t.status = http.StatusOK
	}
	n, err := t.ResponseWriter.Write(b)
	t.bytes += n
	return n, err
}

// Logging emits one start and one completion line per request, carrying
// method, path, status, response size, and duration.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logg == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			trace := &responseTrace{ResponseWriter: w}
			start := time.Now()

			logg.Debug(ctx, "request.start")
			next.ServeHTTP(trace, r.WithContext(ctx))

			if trace.status == 0 {
				trace.status = http.StatusOK
			}

			ctx = logg.WithFields(ctx, map[string]any{
				"status":      trace.status,
				"bytes":       trace.bytes,
				"duration_ms": time.Since(start).Milliseconds(),
			})
			logg.Info(ctx, "request.complete")
		})
	}
}
