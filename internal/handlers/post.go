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

// Posts is the part of services.PostService used by PostHandler
type Posts interface {
	Create(ctx context.Context, actorID string, in services.CreatePostInput) (*models.Post, error)
	Delete(ctx context.Context, actorID, postID string) error
	Comment(ctx context.Context, actorID, postID string, in services.CommentInput) (*models.Post, error)
	ToggleLike(ctx context.Context, actorID, postID string) ([]string, error)
	All(ctx context.Context) ([]*models.Post, error)
	Following(ctx context.Context, actorID string) ([]*models.Post, error)
	Liked(ctx context.Context, userID string) ([]*models.Post, error)
	ByUser(ctx context.Context, username string) ([]*models.Post, error)
}

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService Posts
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService Posts) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// All handles GET /api/posts/all
func (h *PostHandler) All(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.All(r.Context())
	if err != nil {
		respondAppError(w, r, err, "Failed to list posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Following handles GET /api/posts/following
func (h *PostHandler) Following(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Following(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, r, err, "Failed to list following posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Liked handles GET /api/posts/likes/{id}
func (h *PostHandler) Liked(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Liked(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, r, err, "Failed to list liked posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// ByUser handles GET /api/posts/user/{username}
func (h *PostHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ByUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondAppError(w, r, err, "Failed to list user posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Create handles POST /api/posts/create
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreatePostInput
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Create(ctx, userID, req)
	if err != nil {
		respondAppError(w, r, err, "Failed to create post")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", post.ID).
		Bool("has_image", post.Img != "").
		Msg("Post created")

	respondJSON(w, http.StatusCreated, post)
}

// Like handles POST /api/posts/like/{id}
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.postService.ToggleLike(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, r, err, "Failed to toggle like")
		return
	}
	respondJSON(w, http.StatusOK, likes)
}

// Comment handles POST /api/posts/comment/{id}
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req services.CommentInput
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Comment(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		respondAppError(w, r, err, "Failed to comment on post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	postID := chi.URLParam(r, "id")

	if err := h.postService.Delete(ctx, userID, postID); err != nil {
		respondAppError(w, r, err, "Failed to delete post")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", postID).
		Msg("Post deleted")

	respondJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}
