package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/google/uuid"
)

// paymentService moves funds between two accounts.
type paymentService struct {
	BaseService
	accountRepo  portsrepo.AccountReader
	resolver     portssvc.ResolverSvc
	ledger       portssvc.LedgerSvc
	baseCurrency string
	now          func() time.Time
}

// NewPaymentService creates a new PaymentSvc. All contexts settle in baseCurrency.
func NewPaymentService(accountRepo portsrepo.AccountReader, resolver portssvc.ResolverSvc, ledger portssvc.LedgerSvc, baseCurrency string) portssvc.PaymentSvc {
	return &paymentService{
		accountRepo:  accountRepo,
		resolver:     resolver,
		ledger:       ledger,
		baseCurrency: baseCurrency,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.PaymentSvc = (*paymentService)(nil)

// ProcessPayment checks preconditions in a fixed order, the first failure winning,
// then debits the payer and credits the recipient in one posting.
func (s *paymentService) ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("payer_id", req.PayerID), slog.String("method", string(req.Method)))

	if err := authorizeCaller(req.CallerID, req.PayerID); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, errNonPositiveAmount
	}
	if !domain.HasStorableScale(req.Amount) {
		return nil, errAmountScale
	}
	if !req.Method.IsValid() {
		return nil, fmt.Errorf("%w: unsupported payment method %q", apperrors.ErrValidation, req.Method)
	}
	if req.Context == "" {
		req.Context = domain.ContextWallet
	}
	if !req.Context.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment context %q", apperrors.ErrValidation, req.Context)
	}

	fingerprint := paymentFingerprint(req)
	if replayed, err := s.replay(ctx, req, fingerprint); replayed != nil || err != nil {
		return replayed, err
	}

	payer, err := s.accountRepo.FindAccountByID(ctx, req.PayerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: payer account not found", apperrors.ErrNotFound)
		}
		logger.Error("Failed to load payer account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: loading payer: %w", apperrors.ErrInternal, err)
	}
	if !payer.CanDebit(req.Amount) {
		return nil, fmt.Errorf("%w: available %s", apperrors.ErrInsufficientFunds, payer.Balance)
	}

	recipientID, strategy, err := s.resolveRecipient(ctx, req)
	if err != nil {
		return nil, err
	}
	if recipientID == req.PayerID {
		return nil, apperrors.ErrSelfPayment
	}
	recipient, err := s.accountRepo.FindAccountByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: recipient not found", apperrors.ErrNotFound)
		}
		logger.Error("Failed to load recipient account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: loading recipient: %w", apperrors.ErrInternal, err)
	}

	posting := s.buildPosting(req, *payer, *recipient, fingerprint)
	result, err := s.ledger.Post(ctx, posting)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Payment posting failed", slog.String("recipient_id", recipient.AccountID), slog.String("error", err.Error()))
		}
		return nil, err
	}

	out := &domain.PaymentResult{
		RecipientID: recipient.AccountID,
		NewBalance:  result.Balances[payer.AccountID],
		ResolvedBy:  strategy,
		Replayed:    result.Replayed,
	}
	if len(result.TransactionIDs) > 0 {
		out.TransactionID = result.TransactionIDs[0]
	}
	if len(result.TransactionIDs) > 1 {
		out.RecipientTransactionID = result.TransactionIDs[1]
	}

	logger.Info("Payment completed",
		slog.String("transaction_id", out.TransactionID),
		slog.String("recipient_id", out.RecipientID),
		slog.String("context", string(req.Context)),
		slog.Bool("replayed", out.Replayed),
	)
	return out, nil
}

// replay short-circuits a request whose idempotency key was already used, so a
// retried payment succeeds even after the first attempt drained the balance.
func (s *paymentService) replay(ctx context.Context, req domain.PaymentRequest, fingerprint string) (*domain.PaymentResult, error) {
	if req.IdempotencyKey == "" {
		return nil, nil
	}
	rec, err := s.ledger.Replay(ctx, req.PayerID, req.IdempotencyKey)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: idempotency key was already used for a different payment", apperrors.ErrValidation)
	}
	out := &domain.PaymentResult{NewBalance: rec.Balance, Replayed: true}
	if len(rec.TransactionIDs) > 0 {
		out.TransactionID = rec.TransactionIDs[0]
	}
	if len(rec.TransactionIDs) > 1 {
		out.RecipientTransactionID = rec.TransactionIDs[1]
	}
	return out, nil
}

// resolveRecipient maps the payment method to the way the recipient was designated.
func (s *paymentService) resolveRecipient(ctx context.Context, req domain.PaymentRequest) (string, domain.Strategy, error) {
	switch {
	case req.Method.IsProximity():
		id := strings.TrimSpace(req.RecipientID)
		if id == "" {
			return "", "", fmt.Errorf("%w: recipientId is required for %s payments", apperrors.ErrValidation, req.Method)
		}
		return id, domain.StrategyID, nil
	case req.Method == domain.MethodQRCode:
		id := strings.TrimSpace(req.QRCodeData)
		if id == "" {
			return "", "", fmt.Errorf("%w: qrCodeData is required for qrcode payments", apperrors.ErrValidation)
		}
		return id, domain.StrategyID, nil
	default:
		if strings.TrimSpace(req.RecipientIdentifier) == "" {
			return "", "", fmt.Errorf("%w: recipientIdentifier is required for %s payments", apperrors.ErrValidation, req.Method)
		}
		resolved, err := s.resolver.Resolve(ctx, req.RecipientIdentifier)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
				return "", "", err
			}
			return "", "", fmt.Errorf("%w: %w", apperrors.ErrInternal, err)
		}
		return resolved.Account.AccountID, resolved.Strategy, nil
	}
}

func (s *paymentService) buildPosting(req domain.PaymentRequest, payer, recipient domain.Account, fingerprint string) domain.Posting {
	now := s.now()
	sentType, receivedType := req.Context.TransactionTypes()
	sentID, receivedID := uuid.NewString(), uuid.NewString()

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = fmt.Sprintf("%s payment via %s", req.Context, req.Method)
	}

	sent := domain.Transaction{
		TransactionID:  sentID,
		OwnerAccountID: payer.AccountID,
		Type:           sentType,
		Amount:         req.Amount,
		Currency:       s.baseCurrency,
		Status:         domain.StatusCompleted,
		CounterpartyID: recipient.AccountID,
		Context:        req.Context,
		Method:         string(req.Method),
		Description:    description,
		Metadata:       req.Metadata,
		CreatedAt:      now,
	}
	received := sent
	received.TransactionID = receivedID
	received.OwnerAccountID = recipient.AccountID
	received.Type = receivedType
	received.CounterpartyID = payer.AccountID

	sentTitle, sentMsg := sentNotice(sentType, req.Amount, s.baseCurrency, recipient)
	recvTitle, recvMsg := receivedNotice(receivedType, req.Amount, s.baseCurrency, payer)

	posting := domain.Posting{
		Entries: []domain.PostingEntry{
			{AccountID: payer.AccountID, Delta: req.Amount.Neg(), Transaction: sent},
			{AccountID: recipient.AccountID, Delta: req.Amount, Transaction: received},
		},
		Notifications: []domain.Notification{
			newNotification(payer.AccountID, domain.NotificationType(sentType), sentTitle, sentMsg, req.Amount, s.baseCurrency, sentID, now),
			newNotification(recipient.AccountID, domain.NotificationType(receivedType), recvTitle, recvMsg, req.Amount, s.baseCurrency, receivedID, now),
		},
	}
	if req.IdempotencyKey != "" {
		posting.Idempotency = &domain.IdempotencyRecord{
			Key:            req.IdempotencyKey,
			OwnerAccountID: payer.AccountID,
			Fingerprint:    fingerprint,
			CreatedAt:      now,
		}
	}
	return posting
}

// paymentFingerprint covers every parameter that changes what a payment does or records.
func paymentFingerprint(req domain.PaymentRequest) string {
	return domain.Fingerprint(
		"payment",
		req.PayerID,
		req.Amount.String(),
		string(req.Method),
		string(req.Context),
		strings.TrimSpace(req.RecipientID),
		strings.TrimSpace(req.RecipientIdentifier),
		strings.TrimSpace(req.QRCodeData),
		strings.TrimSpace(req.Description),
		canonicalMetadata(req.Metadata),
	)
}

// canonicalMetadata renders metadata in key order so equal maps hash equally.
func canonicalMetadata(md map[string]string) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(md[k])
		b.WriteByte(';')
	}
	return b.String()
}
