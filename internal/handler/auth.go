// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/borderbuddy/travel-platform/internal/middleware"
	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/internal/service"
	"github.com/borderbuddy/travel-platform/pkg/logger"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	service      *service.AuthService
	logger       *logger.Logger
	cookieTTL    time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new auth handler. secureCookie should be
// true everywhere TLS terminates in front of the server.
func NewAuthHandler(svc *service.AuthService, cookieTTL time.Duration, secureCookie bool, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:      svc,
		logger:       log,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to register")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, model.AuthResponse{User: user})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to log in")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, model.AuthResponse{User: user})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, model.AuthResponse{User: user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
