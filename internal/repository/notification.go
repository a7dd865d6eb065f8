package repository

import (
	"context"
	"fmt"
	"time"

	"social-backend/internal/models"

	"github.com/google/uuid"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListByRecipient returns the recipient's notifications newest first,
	// with the sender populated.
	ListByRecipient(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteByRecipient(ctx context.Context, userID string) error
}

type notificationRepo struct {
	db DBTX
}

// Create stores a new unread notification
func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := time.Now()
	n.CreatedAt, n.UpdatedAt = now, now
	n.Read = false

	query := `
		INSERT INTO notifications (id, from_user_id, to_user_id, type, read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, n.ID, n.FromID, n.To, string(n.Type), n.Read, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `
		SELECT id, from_user_id, to_user_id, type, read, created_at, updated_at
		FROM notifications
		WHERE id = $1
	`
	var n models.Notification
	var typ string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.FromID, &n.To, &typ, &n.Read, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err, "failed to get notification: %w")
	}
	n.Type = models.NotificationType(typ)
	return &n, nil
}

// ListByRecipient retrieves notifications addressed to userID
func (r *notificationRepo) ListByRecipient(ctx context.Context, userID string) ([]*models.Notification, error) {
	query := `
		SELECT n.id, n.from_user_id, n.to_user_id, n.type, n.read, n.created_at, n.updated_at,
		       u.username, u.profile_img
		FROM notifications n
		JOIN users u ON u.id = n.from_user_id
		WHERE n.to_user_id = $1
		ORDER BY n.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		var typ string
		from := &models.UserSummary{}
		if err := rows.Scan(
			&n.ID, &n.FromID, &n.To, &typ, &n.Read, &n.CreatedAt, &n.UpdatedAt,
			&from.Username, &from.ProfileImg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		from.ID = n.FromID
		n.From = from
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkAllRead flags every notification addressed to userID as read
func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET read = TRUE, updated_at = NOW() WHERE to_user_id = $1 AND NOT read`
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Delete deletes a notification by ID
func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByRecipient deletes every notification addressed to userID
func (r *notificationRepo) DeleteByRecipient(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE to_user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete notifications: %w", err)
	}
	return nil
}
