package services

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// PaymentSvc executes a transfer of funds between two accounts.
type PaymentSvc interface {
	ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error)
}
