package services

import (
	"context"

	"social-backend/internal/apperrors"
	"social-backend/internal/models"
	"social-backend/internal/repository"
)

// NotificationService handles a user's notification inbox
type NotificationService struct {
	store repository.Store
}

// NewNotificationService creates a new notification service
func NewNotificationService(store repository.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the recipient's notifications newest first and marks them
// all read. The returned records carry their read state from before the
// call.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		repo := tx.Notifications()

		var err error
		notifications, err = repo.ListByRecipient(ctx, recipientID)
		if err != nil {
			return apperrors.Internal(err)
		}

		if err := repo.MarkAllRead(ctx, recipientID); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.From(err)
	}

	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}

// DeleteAll removes every notification addressed to the recipient
func (s *NotificationService) DeleteAll(ctx context.Context, recipientID string) error {
	if err := s.store.Notifications().DeleteByRecipient(ctx, recipientID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// DeleteOne removes a single notification addressed to the recipient
func (s *NotificationService) DeleteOne(ctx context.Context, recipientID, notificationID string) error {
	if !isID(notificationID) {
		return apperrors.ErrNotificationNotFound
	}

	repo := s.store.Notifications()

	notification, err := repo.GetByID(ctx, notificationID)
	if err != nil {
		return storeErr(err, apperrors.ErrNotificationNotFound)
	}

	if notification.To != recipientID {
		return apperrors.Forbidden("You are not allowed to delete this notification")
	}

	if err := repo.Delete(ctx, notificationID); err != nil {
		return storeErr(err, apperrors.ErrNotificationNotFound)
	}
	return nil
}
