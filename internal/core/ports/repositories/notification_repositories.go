package repositories

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// NotificationRepository stores user-facing notifications outside any posting.
type NotificationRepository interface {
	// SaveNotification persists a standalone notification.
	SaveNotification(ctx context.Context, notification domain.Notification) error

	// ListNotificationsByAccount returns an account's notifications newest first using token-based pagination.
	ListNotificationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Notification, *string, error)

	// MarkNotificationRead flags a notification owned by accountID as read.
	MarkNotificationRead(ctx context.Context, accountID string, notificationID string) error
}
