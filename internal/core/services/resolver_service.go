package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
)

// resolverService locates an account from a human-entered identifier.
type resolverService struct {
	BaseService
	accountRepo         portsrepo.AccountRepositoryFacade
	accountNumberPrefix string
	scanBatchSize       int
}

// NewResolverService creates a new ResolverSvc.
func NewResolverService(accountRepo portsrepo.AccountRepositoryFacade, accountNumberPrefix string, scanBatchSize int) portssvc.ResolverSvc {
	if scanBatchSize <= 0 {
		scanBatchSize = 500
	}
	return &resolverService{
		accountRepo:         accountRepo,
		accountNumberPrefix: strings.ToUpper(accountNumberPrefix),
		scanBatchSize:       scanBatchSize,
	}
}

var _ portssvc.ResolverSvc = (*resolverService)(nil)

type resolveStep struct {
	strategy domain.Strategy
	applies  func(string) bool
	find     func(context.Context, string) (*domain.Account, error)
}

func (s *resolverService) steps() []resolveStep {
	return []resolveStep{
		{
			strategy: domain.StrategyID,
			applies:  domain.IsRawAccountID,
			find:     s.accountRepo.FindAccountByID,
		},
		{
			strategy: domain.StrategyEmail,
			applies:  domain.LooksLikeEmail,
			find: func(ctx context.Context, id string) (*domain.Account, error) {
				return s.accountRepo.FindAccountByEmail(ctx, domain.NormalizeEmail(id))
			},
		},
		{
			strategy: domain.StrategyAccountNumber,
			applies: func(id string) bool {
				return domain.HasAccountNumberPrefix(id, s.accountNumberPrefix)
			},
			find: s.findByAccountNumber,
		},
		{
			strategy: domain.StrategyCardNumber,
			applies:  domain.LooksLikeCardNumber,
			find: func(ctx context.Context, id string) (*domain.Account, error) {
				return s.accountRepo.FindAccountByCardNumber(ctx, domain.CardNumberVariants(id))
			},
		},
		{
			strategy: domain.StrategyPhoneNumber,
			applies:  domain.LooksLikePhoneNumber,
			find: func(ctx context.Context, id string) (*domain.Account, error) {
				return s.accountRepo.FindAccountByPhoneNumber(ctx, domain.PhoneNumberVariants(id))
			},
		},
	}
}

// Resolve tries each applicable strategy in priority order and returns the first hit.
func (s *resolverService) Resolve(ctx context.Context, identifier string) (*domain.ResolvedAccount, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: recipient identifier is required", apperrors.ErrValidation)
	}

	for _, step := range s.steps() {
		if !step.applies(identifier) {
			continue
		}
		acc, err := step.find(ctx, identifier)
		if err == nil {
			s.LogDebug(ctx, "Resolved identifier", slog.String("strategy", string(step.strategy)), slog.String("account_id", acc.AccountID))
			return &domain.ResolvedAccount{Account: *acc, Strategy: step.strategy}, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Identifier lookup failed", slog.String("strategy", string(step.strategy)))
			return nil, fmt.Errorf("resolving identifier by %s: %w", step.strategy, err)
		}
	}
	return nil, fmt.Errorf("%w: recipient not found", apperrors.ErrNotFound)
}

// findByAccountNumber matches the stored number first, then falls back to
// recomputing the derived number for every account.
func (s *resolverService) findByAccountNumber(ctx context.Context, identifier string) (*domain.Account, error) {
	number := domain.NormalizeAccountNumber(identifier)
	acc, err := s.accountRepo.FindAccountByAccountNumber(ctx, number)
	if err == nil || !errors.Is(err, apperrors.ErrNotFound) {
		return acc, err
	}

	after := ""
	for {
		page, err := s.accountRepo.ListAccountsAfter(ctx, after, s.scanBatchSize)
		if err != nil {
			return nil, err
		}
		for i := range page {
			candidate := page[i]
			if domain.DeriveAccountNumber(s.accountNumberPrefix, candidate.AccountID) != number {
				continue
			}
			s.cacheAccountNumber(ctx, candidate, number)
			candidate.AccountNumber = number
			return &candidate, nil
		}
		if len(page) < s.scanBatchSize {
			return nil, apperrors.ErrNotFound
		}
		after = page[len(page)-1].AccountID
	}
}

// cacheAccountNumber persists a derived number on an account that has none.
// An account already carrying a different number is left alone, and a failed
// write never fails the resolution.
func (s *resolverService) cacheAccountNumber(ctx context.Context, acc domain.Account, number string) {
	if acc.AccountNumber != "" {
		if !strings.EqualFold(acc.AccountNumber, number) {
			s.LogWarn(ctx, "Derived account number differs from stored number, not caching",
				slog.String("account_id", acc.AccountID))
		}
		return
	}
	if err := s.accountRepo.SetAccountNumber(ctx, acc.AccountID, number); err != nil {
		s.LogWarn(ctx, "Failed to cache derived account number",
			slog.String("account_id", acc.AccountID), slog.String("error", err.Error()))
	}
}
