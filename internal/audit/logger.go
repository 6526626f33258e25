// Package audit records auth events (signups, logins, logouts, refreshes) for
// later review. Writes are best-effort and never fail the request.
package audit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"task-tracker/server/internal/audit/domain"
	auditrepo "task-tracker/server/internal/audit/repository"
)

// Actions recorded by the auth handlers.
const (
	ActionSignup       = "signup"
	ActionLogin        = "login"
	ActionLoginFailure = "login_failure"
	ActionLogout       = "logout"
	ActionRefresh      = "refresh"
	ActionRefreshDeny  = "refresh_denied"

	ResourceAuth = "auth"
)

// Logger writes audit events with the client IP taken from the request.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Logger that persists to repo. repo may be nil, in which
// case every write is a no-op.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogRequest writes one audit log entry for the request. userID is 0 for
// anonymous events. Best-effort: errors are logged and not returned.
func (l *Logger) LogRequest(r *http.Request, userID int64, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ClientIP(r),
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(r.Context(), entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("resource", resource).Msg("audit: failed to log event")
	}
}

// ClientIP returns the client IP from forwarding headers or the remote
// address, or "unknown".
func ClientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-Ip")); s != "" {
		return s
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
