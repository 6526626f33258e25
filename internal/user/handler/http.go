// Package handler exposes the authenticated user's own profile over HTTP.
package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"task-tracker/server/internal/server/middleware"
	"task-tracker/server/internal/server/respond"
)

// Handler serves the /user routes.
type Handler struct{}

// New returns a Handler.
func New() *Handler {
	return &Handler{}
}

// Register mounts the user routes on the router behind the auth middleware.
func (h *Handler) Register(r *mux.Router, verifier middleware.AccessVerifier) {
	users := r.PathPrefix("/user").Subrouter()
	users.Use(middleware.RequireAuth(verifier))
	users.HandleFunc("", h.Me).Methods(http.MethodGet)
	users.HandleFunc("/username", h.Username).Methods(http.MethodGet)
}

// Me returns the public view of the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respond.JSON(w, http.StatusOK, user.Public())
}

// Username returns just the username as a JSON string.
func (h *Handler) Username(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respond.JSON(w, http.StatusOK, user.Username)
}
