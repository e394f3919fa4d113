package mfa

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router exposes the MFA service over HTTP. Identity is expected on the
// request context; mount behind a middleware that resolves it and calls
// SetUserIDToContext.
//
//	r.Mount("/mfa", mfa.Router(svc, log))
func Router(svc *Service, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{svc: svc, log: log}

	r := chi.NewRouter()
	r.Post("/setup", h.setup)
	r.Post("/verify", h.verify)
	r.Post("/recovery-codes", h.generateRecoveryCodes)
	r.Post("/recovery-codes/verify", h.verifyRecoveryCode)
	return r
}

type handlers struct {
	svc *Service
	log *slog.Logger
}

type setupRequest struct {
	AccountName string `json:"account_name"`
}

type setupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

func (h *handlers) setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondServiceError(w, ErrUnauthorized)
		return
	}

	var req setupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccountName == "" {
		req.AccountName = userID.String()
	}

	setup, err := h.svc.BeginSetup(r.Context(), userID, req.AccountName)
	if err != nil {
		h.logFailure(r, "mfa setup failed", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, setupResponse{
		Secret: setup.Secret,
		URI:    setup.URI,
		QRCode: setup.QRCode,
	})
}

type verifyRequest struct {
	Code   string `json:"code"`
	Action string `json:"action"`
}

type verifyResponse struct {
	Verified bool `json:"verified"`
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondServiceError(w, ErrUnauthorized)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, err := ParseAction(req.Action)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	verified, err := h.svc.Verify(r.Context(), userID, req.Code, action)
	if err != nil {
		h.logFailure(r, "otp verification failed", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, verifyResponse{Verified: verified})
}

type recoveryCodesResponse struct {
	Codes []string `json:"codes"`
}

func (h *handlers) generateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondServiceError(w, ErrUnauthorized)
		return
	}

	codes, err := h.svc.GenerateRecoveryCodes(r.Context(), userID)
	if err != nil {
		h.logFailure(r, "recovery code generation failed", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, recoveryCodesResponse{Codes: codes})
}

type recoveryVerifyRequest struct {
	Code string `json:"code"`
}

func (h *handlers) verifyRecoveryCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondServiceError(w, ErrUnauthorized)
		return
	}

	var req recoveryVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	verified, err := h.svc.UseRecoveryCode(r.Context(), userID, req.Code)
	if err != nil {
		h.logFailure(r, "recovery code verification failed", err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, verifyResponse{Verified: verified})
}

func (h *handlers) logFailure(r *http.Request, msg string, err error) {
	// Expected business outcomes are not failures worth an error line.
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNotEnabled) ||
		errors.Is(err, ErrAlreadyEnabled) || errors.Is(err, ErrInvalidAction) {
		return
	}
	h.log.ErrorContext(r.Context(), msg,
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
}
