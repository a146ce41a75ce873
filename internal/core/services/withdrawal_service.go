package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	pickupCodeDigits       = 6
	metaPickupCodeHash     = "pickupCodeHash"
	metaReversedTxnID      = "reversedTransactionId"
	detailPhoneNumber      = "phoneNumber"
	withdrawalDescription  = "Withdrawal via %s"
	reversalDescriptionFmt = "Refund of failed withdrawal %s"
)

// withdrawalService debits accounts toward external payout channels.
type withdrawalService struct {
	BaseService
	accountRepo  portsrepo.AccountReader
	txnRepo      portsrepo.TransactionReader
	ledger       portssvc.LedgerSvc
	baseCurrency string
	now          func() time.Time
}

// NewWithdrawalService creates a new WithdrawalSvcFacade.
func NewWithdrawalService(accountRepo portsrepo.AccountReader, txnRepo portsrepo.TransactionReader, ledger portssvc.LedgerSvc, baseCurrency string) portssvc.WithdrawalSvcFacade {
	return &withdrawalService{
		accountRepo:  accountRepo,
		txnRepo:      txnRepo,
		ledger:       ledger,
		baseCurrency: baseCurrency,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.WithdrawalSvcFacade = (*withdrawalService)(nil)

// Withdraw debits the account immediately and records a pending withdrawal
// that the payout channel later settles.
func (s *withdrawalService) Withdraw(ctx context.Context, req domain.WithdrawalRequest) (*domain.WithdrawalResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("user_id", req.UserID), slog.String("method", string(req.Method)))

	if err := authorizeCaller(req.CallerID, req.UserID); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, errNonPositiveAmount
	}
	if !domain.HasStorableScale(req.Amount) {
		return nil, errAmountScale
	}
	if err := validateMethodDetails(req.Method, req.MethodDetails); err != nil {
		return nil, err
	}

	fingerprint := withdrawalFingerprint(req)
	if replayed, err := s.replay(ctx, req, fingerprint); replayed != nil || err != nil {
		return replayed, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: wallet not found", apperrors.ErrNotFound)
		}
		logger.Error("Failed to load wallet", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: loading wallet: %w", apperrors.ErrInternal, err)
	}
	if !account.CanDebit(req.Amount) {
		return nil, fmt.Errorf("%w: available %s", apperrors.ErrInsufficientFunds, account.Balance)
	}

	metadata := make(map[string]string, len(req.MethodDetails)+1)
	for k, v := range req.MethodDetails {
		metadata[k] = v
	}
	var pickupCode string
	if req.Method == domain.WithdrawAgent {
		pickupCode, err = utils.GenerateNumericCode(pickupCodeDigits)
		if err != nil {
			return nil, fmt.Errorf("%w: generating pickup code: %w", apperrors.ErrInternal, err)
		}
		hash, err := utils.HashPickupCode(pickupCode)
		if err != nil {
			return nil, fmt.Errorf("%w: hashing pickup code: %w", apperrors.ErrInternal, err)
		}
		metadata[metaPickupCodeHash] = hash
	}

	now := s.now()
	txnID := uuid.NewString()
	txn := domain.Transaction{
		TransactionID:  txnID,
		OwnerAccountID: account.AccountID,
		Type:           domain.Withdrawal,
		Amount:         req.Amount,
		Currency:       s.baseCurrency,
		Status:         domain.StatusPending,
		Method:         string(req.Method),
		Description:    fmt.Sprintf(withdrawalDescription, strings.ReplaceAll(string(req.Method), "_", " ")),
		Metadata:       metadata,
		CreatedAt:      now,
	}
	message := fmt.Sprintf("Your withdrawal of %s is being processed. Funds will be available %s.",
		utils.FormatAmount(req.Amount, s.baseCurrency), req.Method.SettlementWindow())
	posting := domain.Posting{
		Entries: []domain.PostingEntry{{AccountID: account.AccountID, Delta: req.Amount.Neg(), Transaction: txn}},
		Notifications: []domain.Notification{
			newNotification(account.AccountID, domain.NotifyWithdrawal, "Withdrawal in progress", message, req.Amount, s.baseCurrency, txnID, now),
		},
	}
	if req.IdempotencyKey != "" {
		posting.Idempotency = &domain.IdempotencyRecord{
			Key:            req.IdempotencyKey,
			OwnerAccountID: account.AccountID,
			Fingerprint:    fingerprint,
			CreatedAt:      now,
		}
	}

	result, err := s.ledger.Post(ctx, posting)
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Withdrawal posting failed", slog.String("error", err.Error()))
		}
		return nil, err
	}
	if result.Replayed {
		return s.replayResult(ctx, req, result.TransactionIDs, result.Balances[account.AccountID]), nil
	}

	logger.Info("Withdrawal recorded as pending", slog.String("transaction_id", txnID))
	return &domain.WithdrawalResult{
		TransactionID: txnID,
		NewBalance:    result.Balances[account.AccountID],
		Amount:        req.Amount,
		Status:        domain.StatusPending,
		PickupCode:    pickupCode,
	}, nil
}

func (s *withdrawalService) replay(ctx context.Context, req domain.WithdrawalRequest, fingerprint string) (*domain.WithdrawalResult, error) {
	if req.IdempotencyKey == "" {
		return nil, nil
	}
	rec, err := s.ledger.Replay(ctx, req.UserID, req.IdempotencyKey)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.Fingerprint != fingerprint {
		return nil, fmt.Errorf("%w: idempotency key was already used for a different withdrawal", apperrors.ErrValidation)
	}
	return s.replayResult(ctx, req, rec.TransactionIDs, rec.Balance), nil
}

// replayResult reports the stored outcome. The pickup code is not recoverable
// since only its hash was kept.
func (s *withdrawalService) replayResult(ctx context.Context, req domain.WithdrawalRequest, txnIDs []string, balance decimal.Decimal) *domain.WithdrawalResult {
	out := &domain.WithdrawalResult{NewBalance: balance, Amount: req.Amount, Status: domain.StatusPending, Replayed: true}
	if len(txnIDs) == 0 {
		return out
	}
	out.TransactionID = txnIDs[0]
	if txn, err := s.txnRepo.FindTransactionByID(ctx, out.TransactionID); err == nil {
		out.Status = txn.Status
	}
	return out
}

// SettleWithdrawal applies the payout channel's verdict. Settling twice with the
// same outcome returns the record unchanged; a different outcome is a conflict.
func (s *withdrawalService) SettleWithdrawal(ctx context.Context, transactionID string, outcome domain.WithdrawalOutcome) (*domain.Transaction, error) {
	if !outcome.IsValid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", apperrors.ErrValidation, outcome)
	}
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: withdrawal not found", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading withdrawal: %w", apperrors.ErrInternal, err)
	}
	if txn.Type != domain.Withdrawal {
		return nil, fmt.Errorf("%w: transaction %s is not a withdrawal", apperrors.ErrValidation, transactionID)
	}

	target := domain.TransactionStatus(outcome)
	if txn.Status == target {
		return txn, nil
	}
	if txn.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: withdrawal is already %s", apperrors.ErrConflict, txn.Status)
	}

	now := s.now()
	posting := domain.Posting{
		Transitions: []domain.StatusTransition{{TransactionID: txn.TransactionID, From: domain.StatusPending, To: target}},
	}
	formatted := utils.FormatAmount(txn.Amount, txn.Currency)
	if outcome == domain.OutcomeCompleted {
		posting.Notifications = []domain.Notification{
			newNotification(txn.OwnerAccountID, domain.NotifyWithdrawalCompleted, "Withdrawal completed",
				fmt.Sprintf("Your withdrawal of %s has been paid out.", formatted), txn.Amount, txn.Currency, txn.TransactionID, now),
		}
	} else {
		reversalID := uuid.NewString()
		posting.Entries = []domain.PostingEntry{{
			AccountID: txn.OwnerAccountID,
			Delta:     txn.Amount,
			Transaction: domain.Transaction{
				TransactionID:  reversalID,
				OwnerAccountID: txn.OwnerAccountID,
				Type:           domain.WithdrawalReversal,
				Amount:         txn.Amount,
				Currency:       txn.Currency,
				Status:         domain.StatusCompleted,
				Method:         txn.Method,
				Description:    fmt.Sprintf(reversalDescriptionFmt, txn.TransactionID),
				Metadata:       map[string]string{metaReversedTxnID: txn.TransactionID},
				CreatedAt:      now,
			},
		}}
		posting.Notifications = []domain.Notification{
			newNotification(txn.OwnerAccountID, domain.NotifyWithdrawalFailed, "Withdrawal failed",
				fmt.Sprintf("Your withdrawal of %s could not be paid out. The amount has been returned to your wallet.", formatted),
				txn.Amount, txn.Currency, reversalID, now),
		}
	}

	if _, err := s.ledger.Post(ctx, posting); err != nil {
		s.LogError(ctx, err, "Failed to settle withdrawal", slog.String("transaction_id", transactionID), slog.String("outcome", string(outcome)))
		return nil, err
	}
	s.LogInfo(ctx, "Withdrawal settled", slog.String("transaction_id", transactionID), slog.String("outcome", string(outcome)))

	settled, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: reloading withdrawal: %w", apperrors.ErrInternal, err)
	}
	return settled, nil
}

func validateMethodDetails(method domain.WithdrawalMethod, details map[string]string) error {
	if !method.IsValid() {
		return fmt.Errorf("%w: unsupported withdrawal method %q", apperrors.ErrValidation, method)
	}
	if method == domain.WithdrawMobileMoney {
		phone := strings.TrimSpace(details[detailPhoneNumber])
		if phone == "" || !domain.LooksLikePhoneNumber(phone) {
			return fmt.Errorf("%w: methodDetails.phoneNumber must be a valid mobile money number", apperrors.ErrValidation)
		}
	}
	return nil
}

func withdrawalFingerprint(req domain.WithdrawalRequest) string {
	return domain.Fingerprint(
		"withdrawal",
		req.UserID,
		req.Amount.String(),
		string(req.Method),
		strings.TrimSpace(req.MethodDetails[detailPhoneNumber]),
	)
}
