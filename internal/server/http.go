// Package server assembles the HTTP router from the per-aggregate handlers
// and the shared middleware chain.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"task-tracker/server/internal/audit"
	auditrepo "task-tracker/server/internal/audit/repository"
	authhandler "task-tracker/server/internal/auth/handler"
	authservice "task-tracker/server/internal/auth/service"
	healthhandler "task-tracker/server/internal/health/handler"
	"task-tracker/server/internal/server/middleware"
	"task-tracker/server/internal/server/respond"
	taskhandler "task-tracker/server/internal/task/handler"
	taskservice "task-tracker/server/internal/task/service"
	"task-tracker/server/internal/telemetry"
	userhandler "task-tracker/server/internal/user/handler"
)

// Deps holds the services and infrastructure the router needs. Nil optional
// fields degrade gracefully rather than failing at startup.
type Deps struct {
	// Auth serves signup/login/refresh/logout and doubles as the bearer
	// token verifier for protected routes. Required.
	Auth *authservice.AuthService
	// Tasks serves task and tag CRUD. Required.
	Tasks *taskservice.TaskService
	// AuditRepo persists auth audit trail entries. If nil, auth events are
	// not audited.
	AuditRepo auditrepo.Repository
	// HealthPinger is used by /health for readiness (e.g. *sql.DB). If nil,
	// /health skips the DB ping.
	HealthPinger healthhandler.Pinger
	// Emitter receives per-request telemetry events. If nil, no events are
	// emitted.
	Emitter telemetry.EventEmitter

	Logger         zerolog.Logger
	AllowedOrigins []string
	CookieSecure   bool
	RefreshTTL     time.Duration
}

// NewRouter builds the full route table and wraps it in the middleware
// chain: CORS, request logging, telemetry, and OTel HTTP instrumentation.
//
// Route → handler mapping:
//   - /auth/*   → internal/auth/handler
//   - /task/*   → internal/task/handler
//   - /tag/*    → internal/task/handler
//   - /user/*   → internal/user/handler
//   - /health   → internal/health/handler
func NewRouter(deps Deps) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"message": "hi"})
	}).Methods(http.MethodGet)

	var auditor *audit.Logger
	if deps.AuditRepo != nil {
		auditor = audit.NewLogger(deps.AuditRepo)
	}

	authhandler.New(deps.Auth, deps.Logger, auditor, deps.CookieSecure, deps.RefreshTTL).Register(r)
	taskhandler.New(deps.Tasks, deps.Logger).Register(r, deps.Auth)
	userhandler.New().Register(r, deps.Auth)
	healthhandler.New(deps.HealthPinger).Register(r)

	// CORS sits outside the router so preflight OPTIONS requests are
	// answered even for routes registered with other methods.
	var h http.Handler = r
	h = middleware.Telemetry(deps.Emitter)(h)
	h = middleware.RequestLogging(deps.Logger)(h)
	h = middleware.CORS(deps.AllowedOrigins)(h)
	return otelhttp.NewHandler(h, "http.server")
}
