package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/proelevate/backend/internal/service"
)

// LikeHandler exposes the score increment endpoint.
type LikeHandler struct {
	likes  *service.LikeService
	logger *slog.Logger
}

// NewLikeHandler creates a LikeHandler.
func NewLikeHandler(likes *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{likes: likes, logger: logger}
}

// likeResponse is the success body of the like endpoint.
type likeResponse struct {
	Msg string `json:"msg"`
}

// HandleLike increments a user's points by one.
//
// HTTP: POST /api1/v1/users/userslike/{id} — no body required.
//
// Responses:
//
//	200 {"msg": "user liked and points updated"}
//	404 {"message": "User not found"}                          — unknown id
//	409 {"message": "Conflict: User data has been modified"}   — stale write
//	500                                                        — anything else
//
// A 409 means the caller lost an optimistic-lock race; the increment was
// not applied and the request should simply be re-issued.
func (h *LikeHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.likes.IncrementScore(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Msg: "user liked and points updated"})
}
