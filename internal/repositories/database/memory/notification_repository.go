package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
)

type notificationRepository Store

var _ portsrepo.NotificationRepository = (*notificationRepository)(nil)

func (r *notificationRepository) store() *Store { return (*Store)(r) }

func (r *notificationRepository) SaveNotification(ctx context.Context, notification domain.Notification) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notifications[notification.NotificationID]; exists {
		return fmt.Errorf("%w: notification %s", apperrors.ErrDuplicate, notification.NotificationID)
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	s.notifications[notification.NotificationID] = notification
	return nil
}

func (r *notificationRepository) ListNotificationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Notification, *string, error) {
	s := r.store()
	s.mu.RLock()
	items := make([]domain.Notification, 0)
	for _, n := range s.notifications {
		if n.OwnerAccountID == accountID {
			items = append(items, n)
		}
	}
	s.mu.RUnlock()

	page, token, err := newestFirst(items, func(n domain.Notification) (time.Time, string) {
		return n.CreatedAt, n.NotificationID
	}, limit, nextToken)
	if err != nil {
		return nil, nil, apperrors.ErrValidation
	}
	return page, token, nil
}

func (r *notificationRepository) MarkNotificationRead(ctx context.Context, accountID string, notificationID string) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.OwnerAccountID != accountID {
		return apperrors.ErrNotFound
	}
	n.Read = true
	s.notifications[notificationID] = n
	return nil
}
