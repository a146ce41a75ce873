package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type ledgerRepository Store

var _ portsrepo.LedgerRepository = (*ledgerRepository)(nil)

func (r *ledgerRepository) store() *Store { return (*Store)(r) }

// ApplyPosting validates every part of the posting against current state before
// mutating anything, so a failure leaves the store untouched.
func (r *ledgerRepository) ApplyPosting(ctx context.Context, posting domain.Posting) (*domain.PostingResult, error) {
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec := posting.Idempotency; rec != nil {
		if existing, ok := s.idempotency[idempotencyKey(rec.OwnerAccountID, rec.Key)]; ok {
			return replayResult(existing, rec.Fingerprint)
		}
	}

	now := time.Now().UTC()
	balances := make(map[string]decimal.Decimal)
	for _, id := range posting.AccountIDs() {
		acc, ok := s.accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		balances[id] = acc.Balance
	}

	records := make([]domain.Transaction, 0, len(posting.Entries))
	for _, e := range posting.Entries {
		if _, exists := s.transactions[e.Transaction.TransactionID]; exists {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, e.Transaction.TransactionID)
		}
		prev := balances[e.AccountID]
		next := prev.Add(e.Delta)
		if next.IsNegative() {
			return nil, fmt.Errorf("%w: account %s has %s, needs %s", apperrors.ErrInsufficientFunds, e.AccountID, prev, e.Delta.Abs())
		}
		balances[e.AccountID] = next

		t := cloneTransaction(e.Transaction)
		t.PreviousBalance = prev
		t.NewBalance = next
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = t.CreatedAt
		records = append(records, t)
	}

	for _, tr := range posting.Transitions {
		live, ok := s.transactions[tr.TransactionID]
		if !ok {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, tr.TransactionID)
		}
		if live.Status != tr.From {
			return nil, fmt.Errorf("%w: transaction %s is %s, expected %s", apperrors.ErrConflict, tr.TransactionID, live.Status, tr.From)
		}
	}

	if gu := posting.GoalUpdate; gu != nil {
		current, ok := s.goals[gu.Goal.GoalID]
		if !ok {
			return nil, fmt.Errorf("%w: goal %s", apperrors.ErrNotFound, gu.Goal.GoalID)
		}
		if current.Status != domain.GoalActive || !sameInstant(current.LastContributionDate, gu.ExpectedLastContribution) {
			return nil, fmt.Errorf("%w: goal %s was modified concurrently", apperrors.ErrConflict, gu.Goal.GoalID)
		}
	}

	// Every check passed; apply.
	for id, bal := range balances {
		acc := s.accounts[id]
		acc.Balance = bal
		acc.LastUpdatedAt = now
		s.accounts[id] = acc
	}
	ids := make([]string, 0, len(records))
	for _, t := range records {
		s.transactions[t.TransactionID] = t
		ids = append(ids, t.TransactionID)
	}
	for _, n := range posting.Notifications {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		s.notifications[n.NotificationID] = n
	}
	for _, tr := range posting.Transitions {
		live := s.transactions[tr.TransactionID]
		live.Status = tr.To
		live.UpdatedAt = now
		s.transactions[tr.TransactionID] = live
	}
	if gu := posting.GoalUpdate; gu != nil {
		g := cloneGoal(gu.Goal)
		g.LastUpdatedAt = now
		s.goals[g.GoalID] = g
	}

	result := &domain.PostingResult{Balances: balances, TransactionIDs: ids}
	if rec := posting.Idempotency; rec != nil {
		stored := *rec
		stored.TransactionIDs = append([]string(nil), ids...)
		if bal, ok := balances[rec.OwnerAccountID]; ok {
			stored.Balance = bal
		} else if acc, ok := s.accounts[rec.OwnerAccountID]; ok {
			stored.Balance = acc.Balance
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		s.idempotency[idempotencyKey(rec.OwnerAccountID, rec.Key)] = stored
	}
	return result, nil
}

// FindIdempotencyRecord looks up a stored keyed result.
func (r *ledgerRepository) FindIdempotencyRecord(ctx context.Context, ownerAccountID string, key string) (*domain.IdempotencyRecord, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.idempotency[idempotencyKey(ownerAccountID, key)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	rec.TransactionIDs = append([]string(nil), rec.TransactionIDs...)
	return &rec, nil
}

func replayResult(existing domain.IdempotencyRecord, fingerprint string) (*domain.PostingResult, error) {
	if existing.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: idempotency key %q was used with different parameters", apperrors.ErrValidation, existing.Key)
	}
	return &domain.PostingResult{
		Balances:       map[string]decimal.Decimal{existing.OwnerAccountID: existing.Balance},
		TransactionIDs: append([]string(nil), existing.TransactionIDs...),
		Replayed:       true,
	}, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
