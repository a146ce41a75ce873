package services

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// LedgerSvc is the balance ledger accessor shared by every engine.
type LedgerSvc interface {
	// Post validates and atomically applies a posting.
	Post(ctx context.Context, posting domain.Posting) (*domain.PostingResult, error)

	// Replay returns the stored outcome of a keyed request, or nil when the key is unused.
	Replay(ctx context.Context, ownerAccountID string, key string) (*domain.IdempotencyRecord, error)
}
