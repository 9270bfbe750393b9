package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/proelevate/backend/internal/auth"
)

// AuthHandler exposes the token refresh endpoint.
type AuthHandler struct {
	tokens   *auth.TokenService
	verifier *auth.RefreshVerifier
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(tokens *auth.TokenService, verifier *auth.RefreshVerifier, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, verifier: verifier, logger: logger}
}

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// HandleRefresh exchanges a valid refresh token for a fresh access token.
//
// HTTP: POST /api1/v1/auth/refresh
// REQUEST: {"token": "<refresh JWT>"}
//
// The refresh token must verify AND match the copy held server-side; a
// revoked session fails here even if the JWT itself is still valid.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid refresh JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid JSON body"})
		return
	}

	userID, err := h.verifier.Verify(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	accessToken, err := h.tokens.Generate(userID)
	if err != nil {
		h.logger.Error("failed to generate access token",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: accessToken})
}
