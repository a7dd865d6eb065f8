package handlers

import (
	"context"
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/models"
	"social-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Profiles is the part of services.UserService used by UserHandler
type Profiles interface {
	GetProfile(ctx context.Context, username string) (*models.User, error)
	Suggest(ctx context.Context, actorID string, limit int) ([]*models.User, error)
	ToggleFollow(ctx context.Context, actorID, targetID string) (*services.FollowResult, error)
	UpdateProfile(ctx context.Context, actorID string, in services.UpdateProfileInput) (*models.User, error)
}

// UserHandler handles profile and follow HTTP requests
type UserHandler struct {
	userService Profiles
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService Profiles) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile handles GET /api/users/profile/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondAppError(w, r, err, "Failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Suggested handles GET /api/users/suggested
func (h *UserHandler) Suggested(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Suggest(r.Context(), middleware.GetUserID(r.Context()), services.DefaultSuggestionLimit)
	if err != nil {
		respondAppError(w, r, err, "Failed to get suggested users")
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Follow handles POST /api/users/follow/{id}
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	targetID := chi.URLParam(r, "id")

	result, err := h.userService.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		respondAppError(w, r, err, "Failed to toggle follow")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("target_id", targetID).
		Bool("following", result.Following).
		Msg("Follow toggled")

	respondJSON(w, http.StatusOK, MessageResponse{Message: result.Message})
}

// Update handles POST /api/users/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
