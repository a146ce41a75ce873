package services

import (
	"fmt"
	"time"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/enkamba/enkamba_payments/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// newNotification builds an unread notification tied to a transaction record.
func newNotification(owner string, nType domain.NotificationType, title, message string, amount decimal.Decimal, currency, relatedTxnID string, now time.Time) domain.Notification {
	return domain.Notification{
		NotificationID:       uuid.NewString(),
		OwnerAccountID:       owner,
		Type:                 nType,
		Title:                title,
		Message:              message,
		Amount:               amount,
		Currency:             currency,
		RelatedTransactionID: relatedTxnID,
		CreatedAt:            now,
	}
}

func sentNotice(sentType domain.TransactionType, amount decimal.Decimal, currency string, recipient domain.Account) (string, string) {
	formatted := utils.FormatAmount(amount, currency)
	if sentType == domain.TransferSent {
		return "Transfer sent", fmt.Sprintf("You sent %s to %s.", formatted, recipient.Label())
	}
	return "Payment sent", fmt.Sprintf("You paid %s to %s.", formatted, recipient.Label())
}

func receivedNotice(receivedType domain.TransactionType, amount decimal.Decimal, currency string, payer domain.Account) (string, string) {
	formatted := utils.FormatAmount(amount, currency)
	if receivedType == domain.TransferReceived {
		return "Money received", fmt.Sprintf("You received %s from %s.", formatted, payer.Label())
	}
	return "Payment received", fmt.Sprintf("%s paid you %s.", payer.Label(), formatted)
}
