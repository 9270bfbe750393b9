package handler

// Response helpers shared by all handlers. Every error leaving the API has
// the same one-field shape:
//
//	{"message": "User not found"}
//
// so clients parse a single format regardless of status code. writeError is
// the only place domain errors meet HTTP status codes — the service layer
// never sees a status code, and handlers never inspect error chains
// themselves.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/proelevate/backend/internal/apperror"
)

// ErrorResponse is the standard error body returned by all API endpoints.
type ErrorResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be written before the body: once Encode calls
// w.Write, the headers are on the wire and further changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent — logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status code and sends it.
//
// errors.Is walks the chain (via AppError.Unwrap) so services are free to
// wrap domain errors with extra context; the sentinel still matches.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrPublish):
			// The mutation committed but the notification didn't go out.
			// The client sees the failure; a reread shows the new score.
			status = http.StatusInternalServerError
		}

		writeJSON(w, status, ErrorResponse{Message: appErr.Message})
		return
	}

	// Untyped error — dependency failure or a bug. Don't leak the raw
	// error text (it can carry SQL fragments or file paths).
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Message: "An internal error occurred",
	})
}
