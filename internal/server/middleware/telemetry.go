package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"task-tracker/server/internal/audit"
	"task-tracker/server/internal/telemetry"
)

type requestMetadata struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// Telemetry emits one "http_request" event per completed request via
// EmitAsync. Health probes are skipped so uptime checks do not flood the
// pipeline. A nil emitter disables the middleware.
func Telemetry(emitter telemetry.EventEmitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if emitter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ctx, observer := withUserObserver(r.Context())
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))
			metadata, err := json.Marshal(requestMetadata{
				Method:     r.Method,
				Path:       r.URL.Path,
				Status:     rec.status,
				DurationMS: time.Since(start).Milliseconds(),
				ClientIP:   audit.ClientIP(r),
			})
			if err != nil {
				return
			}
			telemetry.EmitAsync(emitter, &telemetry.Event{
				UserID:    observer.id,
				EventType: "http_request",
				Source:    "http_middleware",
				Metadata:  metadata,
			})
		})
	}
}
