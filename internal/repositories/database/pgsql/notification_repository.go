package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/enkamba/enkamba_payments/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificationColumns = `notification_id, owner_account_id, notification_type, title, message, amount, currency_code, related_transaction_id, is_read, created_at`

const insertNotificationQuery = `
	INSERT INTO notifications (` + notificationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

type PgxNotificationRepository struct {
	pool *pgxpool.Pool
}

func newPgxNotificationRepository(pool *pgxpool.Pool) portsrepo.NotificationRepository {
	return &PgxNotificationRepository{pool: pool}
}

var _ portsrepo.NotificationRepository = (*PgxNotificationRepository)(nil)

func notificationArgs(n domain.Notification) []any {
	return []any{
		n.NotificationID,
		n.OwnerAccountID,
		string(n.Type),
		n.Title,
		n.Message,
		n.Amount,
		n.Currency,
		nullIfEmpty(n.RelatedTransactionID),
		n.Read,
		n.CreatedAt,
	}
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var notificationType string
	var related sql.NullString
	err := row.Scan(
		&n.NotificationID,
		&n.OwnerAccountID,
		&notificationType,
		&n.Title,
		&n.Message,
		&n.Amount,
		&n.Currency,
		&related,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(notificationType)
	n.RelatedTransactionID = related.String
	return &n, nil
}

// SaveNotification persists a notification written outside a posting.
func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, notification domain.Notification) error {
	_, err := r.pool.Exec(ctx, insertNotificationQuery, notificationArgs(notification)...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: notification %s", apperrors.ErrDuplicate, notification.NotificationID)
		}
		return apperrors.NewAppError(500, "failed to save notification "+notification.NotificationID, err)
	}
	return nil
}

// ListNotificationsByAccount retrieves an account's notifications newest first.
func (r *PgxNotificationRepository) ListNotificationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Notification, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	var rows pgx.Rows
	var err error
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(apperrors.ErrValidation, decodeErr))
		}
		query := `SELECT ` + notificationColumns + ` FROM notifications
			WHERE owner_account_id = $1 AND (created_at, notification_id) < ($2, $3)
			ORDER BY created_at DESC, notification_id DESC LIMIT $4;`
		rows, err = r.pool.Query(ctx, query, accountID, lastCreatedAt, lastID, fetchLimit)
	} else {
		query := `SELECT ` + notificationColumns + ` FROM notifications
			WHERE owner_account_id = $1
			ORDER BY created_at DESC, notification_id DESC LIMIT $2;`
		rows, err = r.pool.Query(ctx, query, accountID, fetchLimit)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query notifications for account "+accountID, err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0, fetchLimit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan notification row", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating notification rows", err)
	}

	var nextTokenVal *string
	if len(notifications) > limit {
		last := notifications[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.NotificationID)
		nextTokenVal = &token
		notifications = notifications[:limit]
	}
	return notifications, nextTokenVal, nil
}

// MarkNotificationRead flags a notification as read when it belongs to accountID.
func (r *PgxNotificationRepository) MarkNotificationRead(ctx context.Context, accountID string, notificationID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1 AND owner_account_id = $2;`
	cmdTag, err := r.pool.Exec(ctx, query, notificationID, accountID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark notification "+notificationID+" as read", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
