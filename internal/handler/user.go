package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/proelevate/backend/internal/service"
)

// UserHandler exposes user CRUD over HTTP. It owns request parsing and
// response formatting only — validation and rules live in the service.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// createUserRequest is the body of POST /newuser. The user object is
// nested to match what existing clients send.
type createUserRequest struct {
	User struct {
		Name       string `json:"name"`
		GithubLink string `json:"githubLink"`
	} `json:"user"`
}

// updateUserRequest is the body of PATCH /updateUser/{id}. Pointer fields
// distinguish "absent" from "zero value" — a points of 0 is a real update.
type updateUserRequest struct {
	User struct {
		Name       string `json:"name"`
		GithubLink string `json:"githubLink"`
		Points     *int   `json:"points"`
	} `json:"user"`
}

// HandleCreate creates a single user.
//
// HTTP: POST /api1/v1/users/newuser
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid create user JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON body"})
		return
	}

	user, err := h.users.Create(r.Context(), req.User.Name, req.User.GithubLink)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleCreateBulk creates many users at once, reporting duplicates
// (matched by githubLink) instead of failing the batch.
//
// HTTP: POST /api1/v1/users/newusers
// RESPONSE: {"createdUsers": [...], "duplicateUsers": [...]}
func (h *UserHandler) HandleCreateBulk(w http.ResponseWriter, r *http.Request) {
	var req []createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid bulk user JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON body"})
		return
	}

	inputs := make([]service.BulkInput, len(req))
	for i, entry := range req {
		inputs[i] = service.BulkInput{
			Name:       entry.User.Name,
			GithubLink: entry.User.GithubLink,
		}
	}

	result, err := h.users.CreateBulk(r.Context(), inputs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleList returns users in descending points order.
//
// HTTP: GET /api1/v1/users/getusers?limit=20&offset=0
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleUpdate applies a partial update to a user's fields.
//
// HTTP: PATCH /api1/v1/users/updateUser/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid update user JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON body"})
		return
	}

	user, err := h.users.Update(r.Context(), id, req.User.Name, req.User.GithubLink, req.User.Points)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes a user and returns the deleted record.
//
// HTTP: DELETE /api1/v1/users/deleteUser/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
