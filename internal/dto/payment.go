package dto

import (
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ProcessPaymentRequest is the body of POST /payments.
type ProcessPaymentRequest struct {
	PayerID             string            `json:"payerId" binding:"required"`
	Amount              decimal.Decimal   `json:"amount"`
	PaymentMethod       string            `json:"paymentMethod" binding:"required,oneof=bluetooth wifi qrcode email phone card account"`
	Context             string            `json:"context" binding:"required,oneof=wallet marketplace logistics social chat bills services"`
	RecipientID         string            `json:"recipientId,omitempty"`
	RecipientIdentifier string            `json:"recipientIdentifier,omitempty"`
	QRCodeData          string            `json:"qrCodeData,omitempty"`
	Description         string            `json:"description,omitempty" binding:"max=280"`
	Metadata            map[string]string `json:"metadata,omitempty"`
	IdempotencyKey      string            `json:"idempotencyKey,omitempty" binding:"max=128"`
}

// ToDomain converts the request for the payment engine.
func (r ProcessPaymentRequest) ToDomain(callerID string) domain.PaymentRequest {
	return domain.PaymentRequest{
		CallerID:            callerID,
		PayerID:             r.PayerID,
		Amount:              r.Amount,
		Method:              domain.PaymentMethod(r.PaymentMethod),
		Context:             domain.PaymentContext(r.Context),
		RecipientID:         r.RecipientID,
		RecipientIdentifier: r.RecipientIdentifier,
		QRCodeData:          r.QRCodeData,
		Description:         r.Description,
		Metadata:            r.Metadata,
		IdempotencyKey:      r.IdempotencyKey,
	}
}

// ProcessPaymentResponse is returned on a committed payment.
type ProcessPaymentResponse struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transactionId"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	Replayed      bool            `json:"replayed,omitempty"`
}

// ToProcessPaymentResponse converts an engine result.
func ToProcessPaymentResponse(res *domain.PaymentResult) ProcessPaymentResponse {
	return ProcessPaymentResponse{
		Success:       true,
		TransactionID: res.TransactionID,
		NewBalance:    res.NewBalance,
		Replayed:      res.Replayed,
	}
}
