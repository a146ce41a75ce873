package services

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// WithdrawalWriterSvc debits an account toward an external payout channel.
type WithdrawalWriterSvc interface {
	Withdraw(ctx context.Context, req domain.WithdrawalRequest) (*domain.WithdrawalResult, error)
}

// WithdrawalSettlementSvc records the payout channel's confirmation.
type WithdrawalSettlementSvc interface {
	// SettleWithdrawal moves a pending withdrawal to its terminal status.
	// A failed payout credits the amount back to the owner.
	SettleWithdrawal(ctx context.Context, transactionID string, outcome domain.WithdrawalOutcome) (*domain.Transaction, error)
}

// WithdrawalSvcFacade combines all withdrawal-related service interfaces
type WithdrawalSvcFacade interface {
	WithdrawalWriterSvc
	WithdrawalSettlementSvc
}
