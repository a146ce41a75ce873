package services

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// ResolverSvc locates exactly one account from a human-entered identifier.
type ResolverSvc interface {
	// Resolve tries id, email, account number, card number and phone number
	// in that order. apperrors.ErrNotFound when nothing matches; other errors
	// are infrastructure failures.
	Resolve(ctx context.Context, identifier string) (*domain.ResolvedAccount, error)
}
