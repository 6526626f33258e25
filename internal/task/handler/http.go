// Package handler exposes task and tag CRUD over HTTP. Every route requires a
// Bearer access token; the acting user comes from the request context.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"task-tracker/server/internal/server/middleware"
	"task-tracker/server/internal/server/respond"
	"task-tracker/server/internal/task/service"
)

type createTaskRequest struct {
	Name   string `json:"name"`
	IsDone bool   `json:"is_done"`
}

type createTagRequest struct {
	Name string `json:"name"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// Handler serves the /task and /tag routes.
type Handler struct {
	svc    *service.TaskService
	logger zerolog.Logger
}

// New returns a Handler.
func New(svc *service.TaskService, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the task and tag routes on the router behind the auth middleware.
func (h *Handler) Register(r *mux.Router, verifier middleware.AccessVerifier) {
	tasks := r.PathPrefix("/task").Subrouter()
	tasks.Use(middleware.RequireAuth(verifier))
	tasks.HandleFunc("/create", h.CreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/list", h.ListTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/done", h.DeleteDone).Methods(http.MethodDelete)
	tasks.HandleFunc("/delete/{id:[0-9]+}", h.DeleteTask).Methods(http.MethodDelete)
	tasks.HandleFunc("/is_done/{id:[0-9]+}/{done:(?:true|false)}", h.SetDone).Methods(http.MethodPatch)
	tasks.HandleFunc("/name/{id:[0-9]+}/{name}", h.RenameTask).Methods(http.MethodPatch)
	tasks.HandleFunc("/{id:[0-9]+}", h.GetTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{id:[0-9]+}/tags", h.ListTaskTags).Methods(http.MethodGet)
	tasks.HandleFunc("/{id:[0-9]+}/tags/{tagID:[0-9]+}", h.AttachTag).Methods(http.MethodPost)
	tasks.HandleFunc("/{id:[0-9]+}/tags/{tagID:[0-9]+}", h.DetachTag).Methods(http.MethodDelete)

	tags := r.PathPrefix("/tag").Subrouter()
	tags.Use(middleware.RequireAuth(verifier))
	tags.HandleFunc("/create", h.CreateTag).Methods(http.MethodPost)
	tags.HandleFunc("/list", h.ListTags).Methods(http.MethodGet)
	tags.HandleFunc("/delete/{id:[0-9]+}", h.DeleteTag).Methods(http.MethodDelete)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	task, err := h.svc.CreateTask(r.Context(), user.ID, req.Name, req.IsDone)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, task)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	task, err := h.svc.GetTask(r.Context(), user.ID, pathID(r, "id"))
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, task)
}

func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	tasks, err := h.svc.ListTasks(r.Context(), user.ID)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tasks)
}

func (h *Handler) SetDone(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	done := mux.Vars(r)["done"] == "true"
	task, err := h.svc.SetDone(r.Context(), user.ID, pathID(r, "id"), done)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, task)
}

func (h *Handler) RenameTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	task, err := h.svc.RenameTask(r.Context(), user.ID, pathID(r, "id"), mux.Vars(r)["name"])
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.svc.DeleteTask(r.Context(), user.ID, pathID(r, "id")); err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"detail": "Task deleted"})
}

func (h *Handler) DeleteDone(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	n, err := h.svc.DeleteDone(r.Context(), user.ID)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), user.ID, req.Name)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, tag)
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	tags, err := h.svc.ListTags(r.Context(), user.ID)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tags)
}

func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.svc.DeleteTag(r.Context(), user.ID, pathID(r, "id")); err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"detail": "Tag deleted"})
}

func (h *Handler) AttachTag(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.svc.AttachTag(r.Context(), user.ID, pathID(r, "id"), pathID(r, "tagID")); err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"detail": "Tag attached"})
}

func (h *Handler) DetachTag(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.svc.DetachTag(r.Context(), user.ID, pathID(r, "id"), pathID(r, "tagID")); err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"detail": "Tag detached"})
}

func (h *Handler) ListTaskTags(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	tags, err := h.svc.ListTaskTags(r.Context(), user.ID, pathID(r, "id"))
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tags)
}

// pathID parses the route variable as an int64. Routes constrain the variables
// to digits, so a parse failure cannot happen for matched requests.
func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

func (h *Handler) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		respond.Error(w, http.StatusUnprocessableEntity, ve.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		respond.Error(w, http.StatusNotFound, "Task not found.")
	case errors.Is(err, service.ErrTagNotFound):
		respond.Error(w, http.StatusNotFound, "Tag not found.")
	case errors.Is(err, service.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "The user cannot access this resource.")
	case errors.Is(err, service.ErrTagNameTaken):
		respond.Error(w, http.StatusConflict, "A tag with the same name exists already.")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("task request failed")
		respond.Error(w, http.StatusInternalServerError, "Internal server error.")
	}
}
