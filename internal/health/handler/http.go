// Package handler serves readiness and liveness probes for Kubernetes, load
// balancers, and CI.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"task-tracker/server/internal/server/respond"
)

// Pinger reports store connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the /health route.
type Handler struct {
	pinger Pinger
}

// New returns a Handler. pinger may be nil, in which case readiness skips the
// store check.
func New(pinger Pinger) *Handler {
	return &Handler{pinger: pinger}
}

// Register mounts the health route on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Check).Methods(http.MethodGet)
}

// Check reports overall health. Returns 503 when the store is unreachable.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			respond.JSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	respond.JSON(w, http.StatusOK, status)
}
