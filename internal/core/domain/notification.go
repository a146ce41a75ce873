package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType classifies a user-facing event.
type NotificationType string

const (
	NotifyPaymentSent         NotificationType = "payment_sent"
	NotifyPaymentReceived     NotificationType = "payment_received"
	NotifyTransferSent        NotificationType = "transfer_sent"
	NotifyTransferReceived    NotificationType = "transfer_received"
	NotifyWithdrawal          NotificationType = "withdrawal"
	NotifyWithdrawalCompleted NotificationType = "withdrawal_completed"
	NotifyWithdrawalFailed    NotificationType = "withdrawal_failed"
	NotifyContribution        NotificationType = "savings_contribution"
	NotifyGoalCompleted       NotificationType = "savings_goal_completed"
	NotifyInsufficientBalance NotificationType = "insufficient_balance"
)

// Notification is informational; the ledger never depends on it.
type Notification struct {
	NotificationID       string           `json:"notificationID"`
	OwnerAccountID       string           `json:"ownerAccountID"`
	Type                 NotificationType `json:"type"`
	Title                string           `json:"title"`
	Message              string           `json:"message"`
	Amount               decimal.Decimal  `json:"amount"`
	Currency             string           `json:"currency"`
	RelatedTransactionID string           `json:"relatedTransactionID,omitempty"`
	Read                 bool             `json:"read"`
	CreatedAt            time.Time        `json:"createdAt"`
}
