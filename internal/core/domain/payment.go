package domain

import (
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the payer designated the recipient.
type PaymentMethod string

const (
	MethodBluetooth PaymentMethod = "bluetooth"
	MethodWifi      PaymentMethod = "wifi"
	MethodQRCode    PaymentMethod = "qrcode"
	MethodEmail     PaymentMethod = "email"
	MethodPhone     PaymentMethod = "phone"
	MethodCard      PaymentMethod = "card"
	MethodAccount   PaymentMethod = "account"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodBluetooth, MethodWifi, MethodQRCode, MethodEmail, MethodPhone, MethodCard, MethodAccount:
		return true
	}
	return false
}

// IsProximity reports whether the recipient id was exchanged out of band.
func (m PaymentMethod) IsProximity() bool {
	return m == MethodBluetooth || m == MethodWifi
}

// PaymentContext tags the business surface a payment originated from.
// It is recorded for reporting and never changes settlement.
type PaymentContext string

const (
	ContextWallet      PaymentContext = "wallet"
	ContextMarketplace PaymentContext = "marketplace"
	ContextLogistics   PaymentContext = "logistics"
	ContextSocial      PaymentContext = "social"
	ContextChat        PaymentContext = "chat"
	ContextBills       PaymentContext = "bills"
	ContextServices    PaymentContext = "services"
)

// IsValid reports whether c is a known context.
func (c PaymentContext) IsValid() bool {
	switch c {
	case ContextWallet, ContextMarketplace, ContextLogistics, ContextSocial, ContextChat, ContextBills, ContextServices:
		return true
	}
	return false
}

// IsPersonToPerson reports whether the context moves money between people
// rather than paying for goods or services.
func (c PaymentContext) IsPersonToPerson() bool {
	return c == ContextWallet || c == ContextSocial || c == ContextChat
}

// TransactionTypes returns the sent/received record types used for c.
func (c PaymentContext) TransactionTypes() (sent, received TransactionType) {
	if c.IsPersonToPerson() {
		return TransferSent, TransferReceived
	}
	return PaymentSent, PaymentReceived
}

// PaymentRequest is a validated-at-the-edge request to move funds between two accounts.
type PaymentRequest struct {
	CallerID            string
	PayerID             string
	Amount              decimal.Decimal
	Method              PaymentMethod
	Context             PaymentContext
	RecipientID         string
	RecipientIdentifier string
	QRCodeData          string
	Description         string
	Metadata            map[string]string
	IdempotencyKey      string
}

// PaymentResult is returned once both sides of a payment are committed.
type PaymentResult struct {
	TransactionID          string          `json:"transactionID"`
	RecipientTransactionID string          `json:"recipientTransactionID"`
	RecipientID            string          `json:"recipientID"`
	NewBalance             decimal.Decimal `json:"newBalance"`
	ResolvedBy             Strategy        `json:"resolvedBy,omitempty"`
	Replayed               bool            `json:"replayed"`
}
