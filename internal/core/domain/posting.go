package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PostingEntry is one balance delta together with the record documenting it.
type PostingEntry struct {
	AccountID   string
	Delta       decimal.Decimal
	Transaction Transaction
}

// StatusTransition moves a transaction out of pending. It is applied only if the
// record is still in From when the posting commits.
type StatusTransition struct {
	TransactionID string
	From          TransactionStatus
	To            TransactionStatus
}

// GoalUpdate writes the post-contribution state of a savings goal, only if the
// goal is still active and its last contribution date is unchanged since it was read.
type GoalUpdate struct {
	Goal                     SavingsGoal
	ExpectedLastContribution *time.Time
}

// IdempotencyRecord remembers the outcome of a keyed request for its owner.
type IdempotencyRecord struct {
	Key            string          `json:"key"`
	OwnerAccountID string          `json:"ownerAccountID"`
	Fingerprint    string          `json:"fingerprint"`
	TransactionIDs []string        `json:"transactionIDs"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Posting is the unit the ledger applies atomically: every entry, record,
// notification, transition and goal update is committed together or not at all.
type Posting struct {
	Entries       []PostingEntry
	Notifications []Notification
	Transitions   []StatusTransition
	GoalUpdate    *GoalUpdate
	Idempotency   *IdempotencyRecord
}

// PostingResult reports balances after commit, keyed by account id, and the ids
// of the transaction records in entry order.
type PostingResult struct {
	Balances       map[string]decimal.Decimal
	TransactionIDs []string
	Replayed       bool
}

// AccountIDs returns the distinct account ids touched by the posting, in entry order.
func (p Posting) AccountIDs() []string {
	seen := make(map[string]bool, len(p.Entries))
	ids := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}
	return ids
}

// Validate checks the structural invariants of a posting before it reaches storage.
func (p Posting) Validate() error {
	if len(p.Entries) == 0 && len(p.Transitions) == 0 && p.GoalUpdate == nil {
		return errors.New("posting has nothing to apply")
	}
	for i, e := range p.Entries {
		if e.AccountID == "" {
			return fmt.Errorf("entry %d: account ID is required", i)
		}
		if e.Delta.IsZero() {
			return fmt.Errorf("entry %d: delta must be non-zero", i)
		}
		if err := e.Transaction.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if e.Transaction.OwnerAccountID != e.AccountID {
			return fmt.Errorf("entry %d: transaction owner %s does not match account %s", i, e.Transaction.OwnerAccountID, e.AccountID)
		}
		if !e.Transaction.SignedAmount().Equal(e.Delta) {
			return fmt.Errorf("entry %d: delta %s does not match %s of %s", i, e.Delta, e.Transaction.Type, e.Transaction.Amount)
		}
	}
	for i, t := range p.Transitions {
		if t.TransactionID == "" || t.From == t.To {
			return fmt.Errorf("transition %d is invalid", i)
		}
	}
	if p.Idempotency != nil && (p.Idempotency.Key == "" || p.Idempotency.OwnerAccountID == "") {
		return errors.New("idempotency record requires key and owner")
	}
	return nil
}

// Fingerprint hashes request parameters so a reused idempotency key can be
// checked against the request it was first used for.
func Fingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}
