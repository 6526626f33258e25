// Package handler exposes the auth service over HTTP: signup, the password
// token exchange, cookie-based refresh rotation, and logout.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"task-tracker/server/internal/audit"
	"task-tracker/server/internal/auth/service"
	"task-tracker/server/internal/server/middleware"
	"task-tracker/server/internal/server/respond"
)

// refreshCookieName names the cookie carrying the raw refresh secret. The
// cookie is path-scoped so it only travels to the auth endpoints.
const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/auth"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
}

// Handler serves the /auth routes.
type Handler struct {
	svc          *service.AuthService
	logger       zerolog.Logger
	auditor      *audit.Logger
	cookieSecure bool
	refreshTTL   time.Duration
}

// New returns a Handler. auditor may be nil to disable audit logging.
// cookieSecure controls the Secure attribute of the refresh cookie; disable
// it only for plain-HTTP development.
func New(svc *service.AuthService, logger zerolog.Logger, auditor *audit.Logger, cookieSecure bool, refreshTTL time.Duration) *Handler {
	return &Handler{svc: svc, logger: logger, auditor: auditor, cookieSecure: cookieSecure, refreshTTL: refreshTTL}
}

// Register mounts the auth routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/auth/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/token", h.Token).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", h.Refresh).Methods(http.MethodPost)
	r.Handle("/auth/logout", middleware.RequireAuth(h.svc)(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)
}

// Signup creates a user from a JSON body and returns its public view with 201.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	public, err := h.svc.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	h.auditor.LogRequest(r, public.ID, audit.ActionSignup, audit.ResourceAuth, "")
	respond.JSON(w, http.StatusCreated, public)
}

// Token is the form-encoded password login. On success the access token goes
// in the body and the refresh secret in the scoped cookie.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	pair, err := h.svc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.auditor.LogRequest(r, 0, audit.ActionLoginFailure, audit.ResourceAuth, "")
		}
		h.writeAuthError(w, r, err)
		return
	}
	h.auditor.LogRequest(r, pair.UserID, audit.ActionLogin, audit.ResourceAuth, "")
	h.setRefreshCookie(w, pair.RefreshSecret)
	respond.JSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
		UserID:      pair.UserID,
	})
}

// Refresh exchanges the refresh cookie for a fresh token pair. The presented
// secret is consumed; the replacement goes back in the cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(w, http.StatusUnauthorized, "Invalid or expired refresh token.")
		return
	}
	pair, err := h.svc.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			h.auditor.LogRequest(r, 0, audit.ActionRefreshDeny, audit.ResourceAuth, "")
			h.clearRefreshCookie(w)
		}
		h.writeAuthError(w, r, err)
		return
	}
	h.auditor.LogRequest(r, pair.UserID, audit.ActionRefresh, audit.ResourceAuth, "")
	h.setRefreshCookie(w, pair.RefreshSecret)
	respond.JSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
		UserID:      pair.UserID,
	})
}

// Logout revokes every active session of the authenticated user and clears
// the refresh cookie. Requires a Bearer access token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	h.clearRefreshCookie(w)
	if err := h.svc.Logout(r.Context(), user.ID); err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	h.auditor.LogRequest(r, user.ID, audit.ActionLogout, audit.ResourceAuth, "")
	respond.JSON(w, http.StatusOK, map[string]string{"detail": "Logged out"})
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    secret,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeAuthError maps service errors to HTTP status codes and the error
// envelope. Store faults are logged with detail and surfaced generically.
func (h *Handler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		respond.Error(w, http.StatusConflict, "A user with the same username exists already.")
	case errors.Is(err, service.ErrEmailTaken):
		respond.Error(w, http.StatusConflict, "A user with the same email exists already.")
	case errors.Is(err, service.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "The username or password is incorrect.")
	case errors.Is(err, service.ErrInvalidRefresh):
		respond.Error(w, http.StatusUnauthorized, "Invalid or expired refresh token.")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("auth request failed")
		respond.Error(w, http.StatusInternalServerError, "Internal server error.")
	}
}
