package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a savings goal pulls from the owner's wallet.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// ThresholdDays returns the whole days that must elapse between contributions.
func (f Frequency) ThresholdDays() (int, bool) {
	switch f {
	case Daily:
		return 1, true
	case Weekly:
		return 7, true
	case Monthly:
		return 30, true
	}
	return 0, false
}

// GoalStatus is the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// SavingsGoal is a recurring-contribution plan, mutated only by the scheduler.
// A nil LastContributionDate means the goal never received a contribution.
type SavingsGoal struct {
	GoalID               string          `json:"goalID"`
	UserID               string          `json:"userID"`
	Name                 string          `json:"name"`
	TargetAmount         decimal.Decimal `json:"targetAmount"`
	CurrentAmount        decimal.Decimal `json:"currentAmount"`
	FrequencyAmount      decimal.Decimal `json:"frequencyAmount"`
	Frequency            Frequency       `json:"frequency"`
	Currency             string          `json:"currency"`
	Status               GoalStatus      `json:"status"`
	LastContributionDate *time.Time      `json:"lastContributionDate,omitempty"`
	AuditFields
}

// ElapsedDays returns the whole days since the last contribution, counting from
// the Unix epoch when there has been none.
func (g SavingsGoal) ElapsedDays(now time.Time) int {
	last := time.Unix(0, 0).UTC()
	if g.LastContributionDate != nil {
		last = *g.LastContributionDate
	}
	if now.Before(last) {
		return 0
	}
	return int(now.Sub(last) / (24 * time.Hour))
}

// IsDue reports whether the goal is active and its frequency threshold is met.
func (g SavingsGoal) IsDue(now time.Time) bool {
	if g.Status != GoalActive {
		return false
	}
	threshold, ok := g.Frequency.ThresholdDays()
	if !ok {
		return false
	}
	return g.ElapsedDays(now) >= threshold
}

// ApplyContribution returns the goal as it looks after one frequency amount is added.
func (g SavingsGoal) ApplyContribution(now time.Time) SavingsGoal {
	next := g
	next.CurrentAmount = g.CurrentAmount.Add(g.FrequencyAmount)
	contributedAt := now
	next.LastContributionDate = &contributedAt
	next.LastUpdatedAt = now
	if next.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		next.Status = GoalCompleted
	} else {
		next.Status = GoalActive
	}
	return next
}
