package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
)

type savingsGoalRepository Store

var _ portsrepo.SavingsGoalRepository = (*savingsGoalRepository)(nil)

func (r *savingsGoalRepository) store() *Store { return (*Store)(r) }

func (r *savingsGoalRepository) ListActiveGoals(ctx context.Context) ([]domain.SavingsGoal, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := make([]domain.SavingsGoal, 0)
	for _, g := range s.goals {
		if g.Status == domain.GoalActive {
			goals = append(goals, cloneGoal(g))
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].GoalID < goals[j].GoalID })
	return goals, nil
}

func (r *savingsGoalRepository) FindGoalByID(ctx context.Context, goalID string) (*domain.SavingsGoal, error) {
	s := r.store()
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[goalID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	g = cloneGoal(g)
	return &g, nil
}

func (r *savingsGoalRepository) SaveGoal(ctx context.Context, goal domain.SavingsGoal) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.goals[goal.GoalID]; exists {
		return fmt.Errorf("%w: goal %s", apperrors.ErrDuplicate, goal.GoalID)
	}
	s.goals[goal.GoalID] = cloneGoal(goal)
	return nil
}
