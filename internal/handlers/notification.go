package handlers

import (
	"context"
	"net/http"

	"social-backend/internal/middleware"
	"social-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// Inbox is the part of services.NotificationService used by NotificationHandler
type Inbox interface {
	List(ctx context.Context, recipientID string) ([]*models.Notification, error)
	DeleteAll(ctx context.Context, recipientID string) error
	DeleteOne(ctx context.Context, recipientID, notificationID string) error
}

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notificationService Inbox
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService Inbox) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondAppError(w, r, err, "Failed to list notifications")
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// DeleteAll handles DELETE /api/notifications
func (h *NotificationHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.DeleteAll(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		respondAppError(w, r, err, "Failed to delete notifications")
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Notifications deleted successfully"})
}

// DeleteOne handles DELETE /api/notifications/{id}
func (h *NotificationHandler) DeleteOne(w http.ResponseWriter, r *http.Request) {
	err := h.notificationService.DeleteOne(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, r, err, "Failed to delete notification")
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Notification deleted successfully"})
}
