package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
)

// ledgerService is the single entry point for balance mutations.
type ledgerService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepository
}

// NewLedgerService creates a new LedgerSvc.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository) portssvc.LedgerSvc {
	return &ledgerService{ledgerRepo: ledgerRepo}
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

// Post validates the posting and hands it to storage as one atomic unit.
func (s *ledgerService) Post(ctx context.Context, posting domain.Posting) (*domain.PostingResult, error) {
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	result, err := s.ledgerRepo.ApplyPosting(ctx, posting)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Posting failed, nothing was committed", slog.Any("accounts", posting.AccountIDs()))
		return nil, fmt.Errorf("%w: posting failed: %w", apperrors.ErrInternal, err)
	}

	if result.Replayed {
		s.LogInfo(ctx, "Idempotent replay of posting", slog.Any("transaction_ids", result.TransactionIDs))
	} else {
		s.LogDebug(ctx, "Posting committed", slog.Any("transaction_ids", result.TransactionIDs))
	}
	return result, nil
}

// Replay returns the stored outcome of a keyed request, or nil when the key is unused.
func (s *ledgerService) Replay(ctx context.Context, ownerAccountID string, key string) (*domain.IdempotencyRecord, error) {
	if key == "" {
		return nil, nil
	}
	rec, err := s.ledgerRepo.FindIdempotencyRecord(ctx, ownerAccountID, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: idempotency lookup failed: %w", apperrors.ErrInternal, err)
	}
	return rec, nil
}

// isDomainError reports whether err carries a caller-facing classification.
func isDomainError(err error) bool {
	for _, target := range []error{
		apperrors.ErrValidation,
		apperrors.ErrNotFound,
		apperrors.ErrInsufficientFunds,
		apperrors.ErrConflict,
		apperrors.ErrDuplicate,
		apperrors.ErrForbidden,
		apperrors.ErrUnauthenticated,
		apperrors.ErrSelfPayment,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
