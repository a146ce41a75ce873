package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type goalOutcome int

const (
	goalProcessed goalOutcome = iota
	goalFailed
	goalSkipped
)

// contributionScheduler moves each due goal's frequency amount out of its owner's wallet.
type contributionScheduler struct {
	BaseService
	goalRepo         portsrepo.SavingsGoalRepository
	accountRepo      portsrepo.AccountReader
	notificationRepo portsrepo.NotificationRepository
	ledger           portssvc.LedgerSvc
	workers          int
	now              func() time.Time
}

// NewContributionScheduler creates a new ContributionSchedulerSvc processing up to workers goals at once.
func NewContributionScheduler(
	goalRepo portsrepo.SavingsGoalRepository,
	accountRepo portsrepo.AccountReader,
	notificationRepo portsrepo.NotificationRepository,
	ledger portssvc.LedgerSvc,
	workers int,
) portssvc.ContributionSchedulerSvc {
	if workers <= 0 {
		workers = 1
	}
	return &contributionScheduler{
		goalRepo:         goalRepo,
		accountRepo:      accountRepo,
		notificationRepo: notificationRepo,
		ledger:           ledger,
		workers:          workers,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.ContributionSchedulerSvc = (*contributionScheduler)(nil)

// RunScheduledContributions processes every active goal independently; no goal's
// failure stops the others. Only failing to list goals is returned as an error.
func (s *contributionScheduler) RunScheduledContributions(ctx context.Context) (*domain.ContributionRunResult, error) {
	goals, err := s.goalRepo.ListActiveGoals(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active savings goals")
		return nil, fmt.Errorf("%w: listing active goals: %w", apperrors.ErrInternal, err)
	}

	now := s.now()
	var processed, failed, skipped atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, goal := range goals {
		g.Go(func() error {
			switch s.safeProcessGoal(ctx, goal, now) {
			case goalProcessed:
				processed.Add(1)
			case goalSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := &domain.ContributionRunResult{
		Processed: int(processed.Load()),
		Failed:    int(failed.Load()),
		Skipped:   int(skipped.Load()),
	}
	s.LogInfo(ctx, "Scheduled contributions run finished",
		slog.Int("goals", len(goals)),
		slog.Int("processed", result.Processed),
		slog.Int("failed", result.Failed),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// safeProcessGoal turns a panic in one goal into a counted failure.
func (s *contributionScheduler) safeProcessGoal(ctx context.Context, goal domain.SavingsGoal, now time.Time) (outcome goalOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.LogError(ctx, fmt.Errorf("panic: %v", r), "Savings goal processing panicked", slog.String("goal_id", goal.GoalID))
			outcome = goalFailed
		}
	}()
	return s.processGoal(ctx, goal, now)
}

func (s *contributionScheduler) processGoal(ctx context.Context, goal domain.SavingsGoal, now time.Time) goalOutcome {
	logger := s.GetLogger(ctx).With(slog.String("goal_id", goal.GoalID), slog.String("user_id", goal.UserID))

	if _, ok := goal.Frequency.ThresholdDays(); !ok {
		logger.Warn("Savings goal has an unknown frequency", slog.String("frequency", string(goal.Frequency)))
		return goalFailed
	}
	if !goal.IsDue(now) {
		return goalSkipped
	}
	if !goal.FrequencyAmount.IsPositive() || !domain.HasStorableScale(goal.FrequencyAmount) {
		logger.Warn("Savings goal has an unusable frequency amount", slog.String("frequency_amount", goal.FrequencyAmount.String()))
		return goalFailed
	}

	wallet, err := s.accountRepo.FindAccountByID(ctx, goal.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Savings goal owner has no wallet")
		} else {
			logger.Error("Failed to load wallet for savings goal", slog.String("error", err.Error()))
		}
		return goalFailed
	}
	if !wallet.CanDebit(goal.FrequencyAmount) {
		s.notifyInsufficientBalance(ctx, goal, now)
		return goalFailed
	}

	posting := s.contributionPosting(goal, now)
	if _, err := s.ledger.Post(ctx, posting); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrConflict):
			logger.Info("Savings goal was claimed by another run")
			return goalSkipped
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			s.notifyInsufficientBalance(ctx, goal, now)
		default:
			logger.Error("Savings contribution failed", slog.String("error", err.Error()))
		}
		return goalFailed
	}

	logger.Info("Savings contribution applied", slog.String("amount", goal.FrequencyAmount.String()))
	return goalProcessed
}

func (s *contributionScheduler) contributionPosting(goal domain.SavingsGoal, now time.Time) domain.Posting {
	next := goal.ApplyContribution(now)
	currency := goal.Currency
	txnID := uuid.NewString()
	formatted := utils.FormatAmount(goal.FrequencyAmount, currency)

	notifications := []domain.Notification{
		newNotification(goal.UserID, domain.NotifyContribution, "Savings contribution",
			fmt.Sprintf("%s was added to your goal %q. Saved so far: %s of %s.", formatted, goal.Name,
				utils.FormatAmount(next.CurrentAmount, currency), utils.FormatAmount(goal.TargetAmount, currency)),
			goal.FrequencyAmount, currency, txnID, now),
	}
	if next.Status == domain.GoalCompleted {
		notifications = append(notifications, newNotification(goal.UserID, domain.NotifyGoalCompleted, "Savings goal reached",
			fmt.Sprintf("Congratulations! You reached your goal %q with %s saved.", goal.Name, utils.FormatAmount(next.CurrentAmount, currency)),
			next.CurrentAmount, currency, txnID, now))
	}

	return domain.Posting{
		Entries: []domain.PostingEntry{{
			AccountID: goal.UserID,
			Delta:     goal.FrequencyAmount.Neg(),
			Transaction: domain.Transaction{
				TransactionID:  txnID,
				OwnerAccountID: goal.UserID,
				Type:           domain.AutoContribution,
				Amount:         goal.FrequencyAmount,
				Currency:       currency,
				Status:         domain.StatusCompleted,
				Description:    fmt.Sprintf("Automatic contribution to %s", goal.Name),
				Metadata:       map[string]string{"goalId": goal.GoalID},
				CreatedAt:      now,
			},
		}},
		Notifications: notifications,
		GoalUpdate: &domain.GoalUpdate{
			Goal:                     next,
			ExpectedLastContribution: goal.LastContributionDate,
		},
	}
}

// notifyInsufficientBalance is informational; a failed write is only logged.
func (s *contributionScheduler) notifyInsufficientBalance(ctx context.Context, goal domain.SavingsGoal, now time.Time) {
	n := newNotification(goal.UserID, domain.NotifyInsufficientBalance, "Savings contribution missed",
		fmt.Sprintf("Your wallet did not have the %s needed for your goal %q.", utils.FormatAmount(goal.FrequencyAmount, goal.Currency), goal.Name),
		goal.FrequencyAmount, goal.Currency, "", now)
	if err := s.notificationRepo.SaveNotification(ctx, n); err != nil {
		s.LogError(ctx, err, "Failed to save insufficient balance notification", slog.String("goal_id", goal.GoalID))
	}
}
