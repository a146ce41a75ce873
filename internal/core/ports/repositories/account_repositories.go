package repositories

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// AccountReader defines read operations for account data.
// Every finder returns apperrors.ErrNotFound when no record matches.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail matches a lower-cased email address.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindAccountByAccountNumber matches an upper-cased account number.
	FindAccountByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// FindAccountByCardNumber returns the first account whose card number equals one of the variants, tried in order.
	FindAccountByCardNumber(ctx context.Context, variants []string) (*domain.Account, error)

	// FindAccountByPhoneNumber returns the first account whose phone number equals one of the variants, tried in order.
	FindAccountByPhoneNumber(ctx context.Context, variants []string) (*domain.Account, error)

	// ListAccountsAfter pages through all accounts ordered by ID.
	ListAccountsAfter(ctx context.Context, afterAccountID string, limit int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
// Balances are never written here; see LedgerRepository.
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SetAccountNumber stores a derived account number on an account that has none.
	SetAccountNumber(ctx context.Context, accountID string, accountNumber string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
