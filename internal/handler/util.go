package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/borderbuddy/travel-platform/internal/service"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps typed service failures to status codes.
// Unrecognized errors are internal; fallback is the 500 message shown
// to the caller.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotEnabled):
		writeError(w, http.StatusNotFound, "borderbuddy not enabled for this trip")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
