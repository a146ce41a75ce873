package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/dto"
)

const defaultPageSize = 20

// walletService serves the caller's own account, history and notifications.
type walletService struct {
	BaseService
	accountRepo      portsrepo.AccountReader
	txnRepo          portsrepo.TransactionReader
	notificationRepo portsrepo.NotificationRepository
}

// NewWalletService creates a new WalletSvcFacade.
func NewWalletService(accountRepo portsrepo.AccountReader, txnRepo portsrepo.TransactionReader, notificationRepo portsrepo.NotificationRepository) portssvc.WalletSvcFacade {
	return &walletService{
		accountRepo:      accountRepo,
		txnRepo:          txnRepo,
		notificationRepo: notificationRepo,
	}
}

var _ portssvc.WalletSvcFacade = (*walletService)(nil)

func (s *walletService) GetWallet(ctx context.Context, callerID string) (*domain.Account, error) {
	if callerID == "" {
		return nil, errUnauthenticated
	}
	account, err := s.accountRepo.FindAccountByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: wallet not found", apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to load wallet")
		return nil, fmt.Errorf("%w: loading wallet: %w", apperrors.ErrInternal, err)
	}
	return account, nil
}

func (s *walletService) ListTransactions(ctx context.Context, callerID string, params dto.ListParams) (*dto.ListTransactionsResponse, error) {
	if callerID == "" {
		return nil, errUnauthenticated
	}
	txns, next, err := s.txnRepo.ListTransactionsByAccount(ctx, callerID, pageSize(params.Limit), normalizeToken(params.NextToken))
	if err != nil {
		return nil, listError(err, "listing transactions")
	}
	out := &dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(txns)),
		NextToken:    next,
	}
	for _, t := range txns {
		out.Transactions = append(out.Transactions, dto.ToTransactionResponse(t))
	}
	return out, nil
}

func (s *walletService) ListNotifications(ctx context.Context, callerID string, params dto.ListParams) (*dto.ListNotificationsResponse, error) {
	if callerID == "" {
		return nil, errUnauthenticated
	}
	items, next, err := s.notificationRepo.ListNotificationsByAccount(ctx, callerID, pageSize(params.Limit), normalizeToken(params.NextToken))
	if err != nil {
		return nil, listError(err, "listing notifications")
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return &dto.ListNotificationsResponse{Notifications: items, NextToken: next}, nil
}

func (s *walletService) MarkNotificationRead(ctx context.Context, callerID string, notificationID string) error {
	if callerID == "" {
		return errUnauthenticated
	}
	if strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("%w: notification id is required", apperrors.ErrValidation)
	}
	if err := s.notificationRepo.MarkNotificationRead(ctx, callerID, notificationID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: notification not found", apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to mark notification read")
		return fmt.Errorf("%w: marking notification read: %w", apperrors.ErrInternal, err)
	}
	return nil
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return limit
}

func normalizeToken(token *string) *string {
	if token == nil || *token == "" {
		return nil
	}
	return token
}

// listError keeps a malformed page token a validation error.
func listError(err error, op string) error {
	if errors.Is(err, apperrors.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrInternal, op, err)
}
