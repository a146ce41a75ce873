package domain

import (
	"github.com/shopspring/decimal"
)

// WithdrawalMethod is the external payout channel.
type WithdrawalMethod string

const (
	WithdrawMobileMoney WithdrawalMethod = "mobile_money"
	WithdrawAgent       WithdrawalMethod = "agent"
)

// IsValid reports whether m is a supported payout channel.
func (m WithdrawalMethod) IsValid() bool {
	return m == WithdrawMobileMoney || m == WithdrawAgent
}

// SettlementWindow describes when the payout is expected to arrive.
func (m WithdrawalMethod) SettlementWindow() string {
	switch m {
	case WithdrawMobileMoney:
		return "within a few minutes and at most 24 hours"
	case WithdrawAgent:
		return "as soon as you present your pickup code to an agent, within 72 hours"
	}
	return "once the payout is confirmed"
}

// WithdrawalRequest asks to move funds out of the ledger toward a payout channel.
type WithdrawalRequest struct {
	CallerID       string
	UserID         string
	Amount         decimal.Decimal
	Method         WithdrawalMethod
	MethodDetails  map[string]string
	IdempotencyKey string
}

// WithdrawalResult is returned once the debit and pending record are committed.
type WithdrawalResult struct {
	TransactionID string            `json:"transactionID"`
	NewBalance    decimal.Decimal   `json:"newBalance"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"status"`
	PickupCode    string            `json:"pickupCode,omitempty"`
	Replayed      bool              `json:"replayed"`
}

// WithdrawalOutcome is what the payout channel reports back.
type WithdrawalOutcome string

const (
	OutcomeCompleted WithdrawalOutcome = "completed"
	OutcomeFailed    WithdrawalOutcome = "failed"
)

// IsValid reports whether o is a terminal outcome.
func (o WithdrawalOutcome) IsValid() bool {
	return o == OutcomeCompleted || o == OutcomeFailed
}
