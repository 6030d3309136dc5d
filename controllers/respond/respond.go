// Package respond writes JSON responses and maps service errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"talenttrack-backend/services"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}

func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, msg string, status int) {
	JSON(w, status, map[string]string{"error": msg})
}

// FromError picks the status for err. Unknown errors are 500 and their text
// goes to the client unchanged.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		Error(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, services.ErrUnauthorized):
		Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrConflict):
		Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Decode reads a JSON body into v. On failure it writes the response and
// returns false: 413 past the body limit, 400 otherwise.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
