package memory

import (
	"context"
	"sort"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
)

type transactionRepository Store

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

func (r *transactionRepository) store() *Store { return (*Store)(r) }

func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	t = cloneTransaction(t)
	return &t, nil
}

func (r *transactionRepository) ListTransactionsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	s := r.store()
	s.mu.RLock()
	items := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.OwnerAccountID == accountID {
			items = append(items, cloneTransaction(t))
		}
	}
	s.mu.RUnlock()

	page, token, err := newestFirst(items, func(t domain.Transaction) (time.Time, string) {
		return t.CreatedAt, t.TransactionID
	}, limit, nextToken)
	if err != nil {
		return nil, nil, apperrors.ErrValidation
	}
	return page, token, nil
}

func (r *transactionRepository) ListTransactionsCreatedBefore(ctx context.Context, cutoff time.Time, after *portsrepo.ArchiveCursor, limit int) ([]domain.Transaction, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if !t.CreatedAt.Before(cutoff) {
			continue
		}
		if after != nil {
			if t.CreatedAt.Before(after.CreatedAt) || (t.CreatedAt.Equal(after.CreatedAt) && t.TransactionID <= after.TransactionID) {
				continue
			}
		}
		items = append(items, cloneTransaction(t))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].TransactionID < items[j].TransactionID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// ArchiveTransaction copies then deletes under one lock, so the record is never
// absent from both collections.
func (r *transactionRepository) ArchiveTransaction(ctx context.Context, transactionID string) (bool, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[transactionID]
	if !ok {
		return false, nil
	}
	if _, archived := s.archived[transactionID]; !archived {
		s.archived[transactionID] = t
	}
	delete(s.transactions, transactionID)
	return true, nil
}
