package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
)

type accountRepository Store

var _ portsrepo.AccountRepositoryFacade = (*accountRepository)(nil)

func (r *accountRepository) store() *Store { return (*Store)(r) }

func (r *accountRepository) findFirst(match func(domain.Account) bool) (*domain.Account, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Map iteration order is random; scan in ID order so duplicates resolve deterministically.
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if acc := s.accounts[id]; match(acc) {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// SaveAccount inserts a new account.
func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	if field := s.identifierTaken(account); field != "" {
		return fmt.Errorf("%w: %s is already used by another account", apperrors.ErrDuplicate, field)
	}
	s.accounts[account.AccountID] = account
	return nil
}

// identifierTaken names the first secondary identifier of account already held
// by a different account. Callers hold s.mu.
func (s *Store) identifierTaken(account domain.Account) string {
	for id, other := range s.accounts {
		if id == account.AccountID {
			continue
		}
		switch {
		case account.Email != "" && strings.EqualFold(other.Email, account.Email):
			return "email"
		case account.PhoneNumber != "" && other.PhoneNumber == account.PhoneNumber:
			return "phone number"
		case account.CardNumber != "" && other.CardNumber == account.CardNumber:
			return "card number"
		case account.AccountNumber != "" && strings.EqualFold(other.AccountNumber, account.AccountNumber):
			return "account number"
		}
	}
	return ""
}

// FindAccountByID retrieves an account by its ID.
func (r *accountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (r *accountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findFirst(func(a domain.Account) bool {
		return a.Email != "" && strings.ToLower(a.Email) == email
	})
}

func (r *accountRepository) FindAccountByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.findFirst(func(a domain.Account) bool {
		return a.AccountNumber != "" && strings.ToUpper(a.AccountNumber) == accountNumber
	})
}

func (r *accountRepository) FindAccountByCardNumber(ctx context.Context, variants []string) (*domain.Account, error) {
	for _, v := range variants {
		acc, err := r.findFirst(func(a domain.Account) bool { return a.CardNumber != "" && a.CardNumber == v })
		if err == nil {
			return acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *accountRepository) FindAccountByPhoneNumber(ctx context.Context, variants []string) (*domain.Account, error) {
	for _, v := range variants {
		acc, err := r.findFirst(func(a domain.Account) bool { return a.PhoneNumber != "" && a.PhoneNumber == v })
		if err == nil {
			return acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// ListAccountsAfter pages through accounts ordered by ID.
func (r *accountRepository) ListAccountsAfter(ctx context.Context, afterAccountID string, limit int) ([]domain.Account, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = defaultPageSize
	}
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		if id > afterAccountID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.accounts[id])
	}
	return out, nil
}

// SetAccountNumber stores a derived account number when none is set.
func (r *accountRepository) SetAccountNumber(ctx context.Context, accountID string, accountNumber string) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if acc.AccountNumber != "" && acc.AccountNumber != accountNumber {
		return fmt.Errorf("%w: account %s already has an account number", apperrors.ErrConflict, accountID)
	}
	if field := s.identifierTaken(domain.Account{AccountID: accountID, AccountNumber: accountNumber}); field != "" {
		return fmt.Errorf("%w: account number %s is taken", apperrors.ErrDuplicate, accountNumber)
	}
	acc.AccountNumber = accountNumber
	s.accounts[accountID] = acc
	return nil
}
