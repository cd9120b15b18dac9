package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/animequiz/internal/animequiz"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, animequiz.ErrRoundNotFound):
		writeError(w, http.StatusNotFound, "round not found or expired")
	case errors.Is(err, animequiz.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, "player not found")
	case errors.Is(err, animequiz.ErrRoundForbidden):
		writeError(w, http.StatusForbidden, "round belongs to another player")
	case errors.Is(err, animequiz.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "daily bonus already claimed")
	case errors.Is(err, animequiz.ErrEmptyPool):
		writeError(w, http.StatusConflict, "no questions available for this mode")
	case errors.Is(err, animequiz.ErrPersistenceUnavailable):
		logger.Error("storage unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, try again")
	default:
		logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
