package dto

import (
	"time"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WalletResponse is the caller's own account view.
type WalletResponse struct {
	AccountID     string          `json:"accountId"`
	DisplayName   string          `json:"displayName"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
}

// ToWalletResponse converts a domain account.
func ToWalletResponse(a *domain.Account, currency string) WalletResponse {
	return WalletResponse{
		AccountID:     a.AccountID,
		DisplayName:   a.DisplayName,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		Currency:      currency,
	}
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionId"`
	Type            domain.TransactionType   `json:"type"`
	Amount          decimal.Decimal          `json:"amount"`
	Currency        string                   `json:"currency"`
	Status          domain.TransactionStatus `json:"status"`
	PreviousBalance decimal.Decimal          `json:"previousBalance"`
	NewBalance      decimal.Decimal          `json:"newBalance"`
	CounterpartyID  string                   `json:"counterpartyId,omitempty"`
	Context         domain.PaymentContext    `json:"context,omitempty"`
	Description     string                   `json:"description"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction. Metadata is not exposed.
func ToTransactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Type:            t.Type,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Status:          t.Status,
		PreviousBalance: t.PreviousBalance,
		NewBalance:      t.NewBalance,
		CounterpartyID:  t.CounterpartyID,
		Context:         t.Context,
		Description:     t.Description,
		CreatedAt:       t.CreatedAt,
	}
}

// ListTransactionsResponse is a page of transaction history.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ListNotificationsResponse is a page of notifications.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	NextToken     *string               `json:"nextToken,omitempty"`
}

// ResolveRecipientResponse is the public view of a resolved account.
type ResolveRecipientResponse struct {
	AccountID   string          `json:"accountId"`
	DisplayName string          `json:"displayName"`
	Strategy    domain.Strategy `json:"strategy"`
}

// ToResolveRecipientResponse strips everything but the public fields.
func ToResolveRecipientResponse(r *domain.ResolvedAccount) ResolveRecipientResponse {
	return ResolveRecipientResponse{
		AccountID:   r.Account.AccountID,
		DisplayName: r.Account.DisplayName,
		Strategy:    r.Strategy,
	}
}
