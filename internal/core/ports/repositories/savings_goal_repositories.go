package repositories

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// SavingsGoalRepository reads goals for the scheduler. Contribution writes go
// through LedgerRepository.ApplyPosting so they share the debit's transaction.
type SavingsGoalRepository interface {
	// ListActiveGoals returns every goal with status active.
	ListActiveGoals(ctx context.Context) ([]domain.SavingsGoal, error)

	// FindGoalByID retrieves a goal by its ID.
	FindGoalByID(ctx context.Context, goalID string) (*domain.SavingsGoal, error)

	// SaveGoal persists a new goal.
	SaveGoal(ctx context.Context, goal domain.SavingsGoal) error
}
