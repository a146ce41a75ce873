package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents one wallet owner. AccountID is the owner's user id.
// Balance is mutated only through a Posting applied by the ledger.
type Account struct {
	AccountID     string          `json:"accountID"`
	DisplayName   string          `json:"displayName"`
	Email         string          `json:"email,omitempty"`
	PhoneNumber   string          `json:"phoneNumber,omitempty"`
	CardNumber    string          `json:"cardNumber,omitempty"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	AuditFields
}

// CanDebit reports whether amount can be taken without going negative.
func (a Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// Label returns the name shown to the other party in messages. Contact
// identifiers are never used, so a counterparty cannot learn them.
func (a Account) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "an eNkamba user"
}
