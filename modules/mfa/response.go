package mfa

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/mfaguard/pkg/totp"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps service errors onto HTTP statuses with generic
// bodies. Internals stay in the logs.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, ErrNotConfigured):
		respondError(w, http.StatusNotFound, "mfa is not configured")
	case errors.Is(err, ErrNotEnabled):
		respondError(w, http.StatusBadRequest, "mfa is not enabled")
	case errors.Is(err, ErrAlreadyEnabled):
		respondError(w, http.StatusConflict, "mfa is already enabled")
	case errors.Is(err, ErrInvalidAction), errors.Is(err, totp.ErrInvalidOTP):
		respondError(w, http.StatusBadRequest, "invalid request")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
