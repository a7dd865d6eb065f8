package handlers

import (
	"context"
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// Authenticator is the part of services.AuthService used by AuthHandler
type Authenticator interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.Session, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Logout() *http.Cookie
}

// AuthHandler handles signup, login and session HTTP requests
type AuthHandler struct {
	authService Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService Authenticator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupInput
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to sign up")
		return
	}

	log.Info().
		Str("user_id", session.User.ID).
		Str("username", session.User.Username).
		Msg("User signed up")

	http.SetCookie(w, session.Cookie)
	respondJSON(w, http.StatusCreated, session.User)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to log in")
		return
	}

	http.SetCookie(w, session.Cookie)
	respondJSON(w, http.StatusOK, session.User)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.authService.Logout())
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.GetUser(r.Context()))
}
