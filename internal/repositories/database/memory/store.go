// Package memory is an in-process adapter implementing the repository ports
// with the same atomicity guarantees as the PostgreSQL adapter. A single mutex
// serializes every mutation, so a posting is observed entirely or not at all.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/enkamba/enkamba_payments/internal/utils/pagination"
)

const defaultPageSize = 20

// Store holds every collection in memory.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]domain.Account
	transactions  map[string]domain.Transaction
	archived      map[string]domain.Transaction
	notifications map[string]domain.Notification
	goals         map[string]domain.SavingsGoal
	idempotency   map[string]domain.IdempotencyRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]domain.Account),
		transactions:  make(map[string]domain.Transaction),
		archived:      make(map[string]domain.Transaction),
		notifications: make(map[string]domain.Notification),
		goals:         make(map[string]domain.SavingsGoal),
		idempotency:   make(map[string]domain.IdempotencyRecord),
	}
}

// NewRepositoryProvider exposes one store through every repository port.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      (*accountRepository)(store),
		LedgerRepo:       (*ledgerRepository)(store),
		TransactionRepo:  (*transactionRepository)(store),
		NotificationRepo: (*notificationRepository)(store),
		SavingsGoalRepo:  (*savingsGoalRepository)(store),
	}
}

// ArchivedTransaction returns an archived record, for inspection by tests and tooling.
func (s *Store) ArchivedTransaction(transactionID string) (domain.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.archived[transactionID]
	return t, ok
}

// ArchivedCount returns the number of archived records.
func (s *Store) ArchivedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.archived)
}

// PutTransaction inserts a live record directly, bypassing the ledger. It exists
// to load historical data and must not be used for new balance events.
func (s *Store) PutTransaction(t domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.TransactionID] = cloneTransaction(t)
}

func idempotencyKey(owner, key string) string {
	return owner + "\x00" + key
}

func cloneTransaction(t domain.Transaction) domain.Transaction {
	if t.Metadata != nil {
		md := make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			md[k] = v
		}
		t.Metadata = md
	}
	return t
}

func cloneGoal(g domain.SavingsGoal) domain.SavingsGoal {
	if g.LastContributionDate != nil {
		d := *g.LastContributionDate
		g.LastContributionDate = &d
	}
	return g
}

// newestFirst sorts by (createdAt, id) descending and pages with a cursor token.
func newestFirst[T any](items []T, key func(T) (time.Time, string), limit int, nextToken *string) ([]T, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})

	start := 0
	if nextToken != nil && *nextToken != "" {
		cursorTime, cursorID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, err
		}
		start = len(items)
		for i, item := range items {
			t, id := key(item)
			if t.Before(cursorTime) || (t.Equal(cursorTime) && id < cursorID) {
				start = i
				break
			}
		}
	}

	page := items[start:]
	var token *string
	if len(page) > limit {
		page = page[:limit]
		t, id := key(page[limit-1])
		next := pagination.EncodeToken(t, id)
		token = &next
	}
	return page, token, nil
}
