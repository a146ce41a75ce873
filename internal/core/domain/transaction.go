package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a balance-affecting event for one account.
type TransactionType string

const (
	PaymentSent        TransactionType = "payment_sent"
	PaymentReceived    TransactionType = "payment_received"
	TransferSent       TransactionType = "transfer_sent"
	TransferReceived   TransactionType = "transfer_received"
	Withdrawal         TransactionType = "withdrawal"
	WithdrawalReversal TransactionType = "withdrawal_reversal"
	AutoContribution   TransactionType = "auto_contribution"
)

// IsDebit reports whether the type takes money out of the owner's account.
func (t TransactionType) IsDebit() bool {
	switch t {
	case PaymentSent, TransferSent, Withdrawal, AutoContribution:
		return true
	}
	return false
}

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case PaymentSent, PaymentReceived, TransferSent, TransferReceived, Withdrawal, WithdrawalReversal, AutoContribution:
		return true
	}
	return false
}

// TransactionStatus is the settlement state of a transaction record.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only record documenting one side of a balance mutation.
// Only Status may change after creation, and only from pending.
type Transaction struct {
	TransactionID   string            `json:"transactionID"`
	OwnerAccountID  string            `json:"ownerAccountID"`
	Type            TransactionType   `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Status          TransactionStatus `json:"status"`
	PreviousBalance decimal.Decimal   `json:"previousBalance"`
	NewBalance      decimal.Decimal   `json:"newBalance"`
	CounterpartyID  string            `json:"counterpartyID,omitempty"`
	Context         PaymentContext    `json:"context,omitempty"`
	Method          string            `json:"method,omitempty"`
	Description     string            `json:"description"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// AmountScale is the number of fractional digits amounts and balances are stored with.
const AmountScale = 4

// HasStorableScale reports whether amount fits in AmountScale fractional digits without rounding.
func HasStorableScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountScale))
}

// SignedAmount returns the balance delta this record documents.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Validate checks the record invariants that hold before persistence.
func (t Transaction) Validate() error {
	if t.TransactionID == "" {
		return errors.New("transaction ID is required")
	}
	if t.OwnerAccountID == "" {
		return errors.New("owner account ID is required")
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if !t.Amount.IsPositive() {
		return errors.New("transaction amount must be positive")
	}
	if !HasStorableScale(t.Amount) {
		return fmt.Errorf("transaction amount %s has more than %d decimal places", t.Amount, AmountScale)
	}
	switch t.Status {
	case StatusPending, StatusCompleted, StatusFailed:
	default:
		return fmt.Errorf("unknown transaction status %q", t.Status)
	}
	return nil
}
