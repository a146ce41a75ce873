package services

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/enkamba/enkamba_payments/internal/dto"
)

// WalletReaderSvc exposes the caller's own wallet.
type WalletReaderSvc interface {
	// GetWallet returns the caller's account.
	GetWallet(ctx context.Context, callerID string) (*domain.Account, error)

	// ListTransactions returns the caller's transaction history.
	ListTransactions(ctx context.Context, callerID string, params dto.ListParams) (*dto.ListTransactionsResponse, error)

	// ListNotifications returns the caller's notifications.
	ListNotifications(ctx context.Context, callerID string, params dto.ListParams) (*dto.ListNotificationsResponse, error)
}

// WalletWriterSvc changes caller-owned informational state.
type WalletWriterSvc interface {
	// MarkNotificationRead flags one of the caller's notifications as read.
	MarkNotificationRead(ctx context.Context, callerID string, notificationID string) error
}

// WalletSvcFacade combines all wallet-related service interfaces
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletWriterSvc
}
