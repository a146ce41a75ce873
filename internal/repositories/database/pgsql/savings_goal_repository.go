package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const goalColumns = `goal_id, user_id, name, target_amount, current_amount, frequency_amount, frequency, currency_code, status, last_contribution_date, created_at, last_updated_at`

type PgxSavingsGoalRepository struct {
	pool *pgxpool.Pool
}

func newPgxSavingsGoalRepository(pool *pgxpool.Pool) portsrepo.SavingsGoalRepository {
	return &PgxSavingsGoalRepository{pool: pool}
}

var _ portsrepo.SavingsGoalRepository = (*PgxSavingsGoalRepository)(nil)

func scanGoal(row pgx.Row) (*domain.SavingsGoal, error) {
	var g domain.SavingsGoal
	var frequency, status string
	var lastContribution *time.Time
	err := row.Scan(
		&g.GoalID,
		&g.UserID,
		&g.Name,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.FrequencyAmount,
		&frequency,
		&g.Currency,
		&status,
		&lastContribution,
		&g.CreatedAt,
		&g.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Frequency = domain.Frequency(frequency)
	g.Status = domain.GoalStatus(status)
	g.LastContributionDate = lastContribution
	return &g, nil
}

// ListActiveGoals retrieves every active goal ordered by ID.
func (r *PgxSavingsGoalRepository) ListActiveGoals(ctx context.Context) ([]domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE status = 'active' ORDER BY goal_id;`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query active savings goals", err)
	}
	defer rows.Close()

	goals := []domain.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan savings goal row", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating savings goal rows", err)
	}
	return goals, nil
}

func (r *PgxSavingsGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE goal_id = $1;`
	g, err := scanGoal(r.pool.QueryRow(ctx, query, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find savings goal "+goalID, err)
	}
	return g, nil
}

func (r *PgxSavingsGoalRepository) SaveGoal(ctx context.Context, goal domain.SavingsGoal) error {
	query := `
		INSERT INTO savings_goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.pool.Exec(ctx, query,
		goal.GoalID,
		goal.UserID,
		goal.Name,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.FrequencyAmount,
		string(goal.Frequency),
		goal.Currency,
		string(goal.Status),
		goal.LastContributionDate,
		goal.CreatedAt,
		goal.LastUpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: goal %s", apperrors.ErrDuplicate, goal.GoalID)
		}
		return apperrors.NewAppError(500, "failed to save savings goal "+goal.GoalID, err)
	}
	return nil
}
