package repositories

import (
	"context"
	"time"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// LedgerRepository is the only writer of account balances.
type LedgerRepository interface {
	// ApplyPosting commits every part of the posting atomically. Balances are
	// re-read under lock; an entry that would leave a balance negative fails the
	// whole posting with apperrors.ErrInsufficientFunds. A posting whose
	// idempotency key was already used returns the stored result with Replayed
	// set, or apperrors.ErrValidation if the fingerprint differs.
	ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.PostingResult, error)

	// FindIdempotencyRecord looks up a previously stored keyed result.
	FindIdempotencyRecord(ctx context.Context, ownerAccountID string, key string) (*domain.IdempotencyRecord, error)
}

// TransactionReader defines read operations for transaction records.
type TransactionReader interface {
	// FindTransactionByID retrieves a live transaction record.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactionsByAccount returns an account's records newest first using token-based pagination.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// ArchiveCursor marks the last record examined by a sweep.
type ArchiveCursor struct {
	CreatedAt     time.Time
	TransactionID string
}

// TransactionArchiver moves old records to cold storage.
type TransactionArchiver interface {
	// ListTransactionsCreatedBefore returns live records older than cutoff,
	// oldest first, strictly after the cursor when one is given.
	ListTransactionsCreatedBefore(ctx context.Context, cutoff time.Time, after *ArchiveCursor, limit int) ([]domain.Transaction, error)

	// ArchiveTransaction copies the record to the archive and then deletes the
	// live copy. It reports false when the record was no longer live.
	ArchiveTransaction(ctx context.Context, transactionID string) (bool, error)
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionArchiver
}
