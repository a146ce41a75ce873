package dto

import (
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/shopspring/decimal"
)

// WithdrawRequest is the body of POST /withdrawals.
type WithdrawRequest struct {
	UserID           string            `json:"userId" binding:"required"`
	Amount           decimal.Decimal   `json:"amount"`
	WithdrawalMethod string            `json:"withdrawalMethod" binding:"required,oneof=mobile_money agent"`
	MethodDetails    map[string]string `json:"methodDetails"`
	IdempotencyKey   string            `json:"idempotencyKey,omitempty" binding:"max=128"`
}

// ToDomain converts the request for the withdrawal engine.
func (r WithdrawRequest) ToDomain(callerID string) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		CallerID:       callerID,
		UserID:         r.UserID,
		Amount:         r.Amount,
		Method:         domain.WithdrawalMethod(r.WithdrawalMethod),
		MethodDetails:  r.MethodDetails,
		IdempotencyKey: r.IdempotencyKey,
	}
}

// WithdrawResponse is returned once the debit is committed.
type WithdrawResponse struct {
	Success       bool                     `json:"success"`
	TransactionID string                   `json:"transactionId"`
	NewBalance    decimal.Decimal          `json:"newBalance"`
	Amount        decimal.Decimal          `json:"amount"`
	Status        domain.TransactionStatus `json:"status"`
	PickupCode    string                   `json:"pickupCode,omitempty"`
	Replayed      bool                     `json:"replayed,omitempty"`
}

// ToWithdrawResponse converts an engine result.
func ToWithdrawResponse(res *domain.WithdrawalResult) WithdrawResponse {
	return WithdrawResponse{
		Success:       true,
		TransactionID: res.TransactionID,
		NewBalance:    res.NewBalance,
		Amount:        res.Amount,
		Status:        res.Status,
		PickupCode:    res.PickupCode,
		Replayed:      res.Replayed,
	}
}

// SettleWithdrawalRequest is the body sent by the payout channel.
type SettleWithdrawalRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=completed failed"`
}
