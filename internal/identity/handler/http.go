// Package handler exposes password register and login over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"club-control-plane/internal/audit"
	"club-control-plane/internal/identity/service"
)

// AuthHandler serves /v1/auth routes.
type AuthHandler struct {
	auth   *service.AuthService
	audits audit.AuditLogger
}

// NewAuthHandler returns an AuthHandler over the given auth service.
func NewAuthHandler(auth *service.AuthService, audits audit.AuditLogger) *AuthHandler {
	return &AuthHandler{auth: auth, audits: audits}
}

// Mount registers the auth routes on r.
func (h *AuthHandler) Mount(r chi.Router) {
	r.Post("/v1/auth/register", h.Register)
	r.Post("/v1/auth/login", h.Login)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type registerResponse struct {
	UserID string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID      string    `json:"userId"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Register creates a user with a local password identity.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("auth: register: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.audits.LogEvent(r.Context(), "", res.UserID, "auth.register", "user:"+res.UserID, "")
	writeJSON(w, http.StatusCreated, registerResponse{UserID: res.UserID})
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audits.LogEvent(r.Context(), "", "", "auth.login_failed", "email:"+req.Email, "")
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("auth: login: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.audits.LogEvent(r.Context(), "", res.UserID, "auth.login", "user:"+res.UserID, "")
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:      res.UserID,
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("auth: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
