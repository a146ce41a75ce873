package services_test

import (
	"sync"
	"testing"
	"time"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ContributionSchedulerTestSuite struct {
	ledgerSuite
}

func TestContributionSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(ContributionSchedulerTestSuite))
}

func (s *ContributionSchedulerTestSuite) seedGoal(g domain.SavingsGoal) domain.SavingsGoal {
	if g.Currency == "" {
		g.Currency = "CDF"
	}
	if g.Status == "" {
		g.Status = domain.GoalActive
	}
	s.Require().NoError(s.repos.SavingsGoalRepo.SaveGoal(s.ctx, g))
	return g
}

func (s *ContributionSchedulerTestSuite) goal(id string) *domain.SavingsGoal {
	g, err := s.repos.SavingsGoalRepo.FindGoalByID(s.ctx, id)
	s.Require().NoError(err)
	return g
}

func (s *ContributionSchedulerTestSuite) notificationsOfType(accountID string, t domain.NotificationType) []domain.Notification {
	var out []domain.Notification
	for _, n := range s.notifications(accountID) {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (s *ContributionSchedulerTestSuite) TestRun_ProcessesEachGoalIndependently() {
	threeDaysAgo := time.Now().UTC().Add(-72 * time.Hour)
	s.seedGoal(domain.SavingsGoal{GoalID: "g1-daily", UserID: s.alice.AccountID, Name: "School fees",
		TargetAmount: decimal.NewFromInt(2000), FrequencyAmount: decimal.NewFromInt(500), Frequency: domain.Daily})
	s.seedGoal(domain.SavingsGoal{GoalID: "g2-weekly", UserID: s.alice.AccountID, Name: "Phone",
		TargetAmount: decimal.NewFromInt(9000), FrequencyAmount: decimal.NewFromInt(100), Frequency: domain.Weekly,
		LastContributionDate: &threeDaysAgo})
	s.seedGoal(domain.SavingsGoal{GoalID: "g3-orphan", UserID: "ghost", Name: "Nothing",
		TargetAmount: decimal.NewFromInt(100), FrequencyAmount: decimal.NewFromInt(10), Frequency: domain.Daily})
	s.seedGoal(domain.SavingsGoal{GoalID: "g4-broke", UserID: s.bob.AccountID, Name: "Bike",
		TargetAmount: decimal.NewFromInt(5000), FrequencyAmount: decimal.NewFromInt(600), Frequency: domain.Monthly})
	s.seedGoal(domain.SavingsGoal{GoalID: "g5-almost", UserID: s.alice.AccountID, Name: "Trip",
		TargetAmount: decimal.NewFromInt(2000), CurrentAmount: decimal.NewFromInt(1800), FrequencyAmount: decimal.NewFromInt(500), Frequency: domain.Daily})

	res, err := s.svc.Contributions.RunScheduledContributions(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.ContributionRunResult{Processed: 2, Failed: 2, Skipped: 1}, *res)

	s.assertBalance(s.alice.AccountID, 9000)
	s.assertBalance(s.bob.AccountID, 500)

	g1 := s.goal("g1-daily")
	s.True(decimal.NewFromInt(500).Equal(g1.CurrentAmount))
	s.Equal(domain.GoalActive, g1.Status)
	s.Require().NotNil(g1.LastContributionDate)

	g5 := s.goal("g5-almost")
	s.Equal(domain.GoalCompleted, g5.Status)
	s.True(decimal.NewFromInt(2300).Equal(g5.CurrentAmount))

	g2 := s.goal("g2-weekly")
	s.True(g2.LastContributionDate.Equal(threeDaysAgo))
	s.True(g2.CurrentAmount.IsZero())

	s.Len(s.notificationsOfType(s.alice.AccountID, domain.NotifyContribution), 2)
	s.Len(s.notificationsOfType(s.alice.AccountID, domain.NotifyGoalCompleted), 1)
	s.Len(s.notificationsOfType(s.bob.AccountID, domain.NotifyInsufficientBalance), 1)

	var contributions int
	for _, t := range s.transactions(s.alice.AccountID) {
		if t.Type == domain.AutoContribution {
			contributions++
			s.NotEmpty(t.Metadata["goalId"])
		}
	}
	s.Equal(2, contributions)
}

func (s *ContributionSchedulerTestSuite) TestRun_SecondRunDoesNotRepeat() {
	s.seedGoal(domain.SavingsGoal{GoalID: "g1", UserID: s.alice.AccountID, Name: "Rent",
		TargetAmount: decimal.NewFromInt(100000), FrequencyAmount: decimal.NewFromInt(1000), Frequency: domain.Daily})

	first, err := s.svc.Contributions.RunScheduledContributions(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, first.Processed)

	second, err := s.svc.Contributions.RunScheduledContributions(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.ContributionRunResult{Skipped: 1}, *second)
	s.assertBalance(s.alice.AccountID, 9000)
}

func (s *ContributionSchedulerTestSuite) TestRun_OverlappingRunsContributeOnce() {
	s.seedGoal(domain.SavingsGoal{GoalID: "g1", UserID: s.alice.AccountID, Name: "Rent",
		TargetAmount: decimal.NewFromInt(100000), FrequencyAmount: decimal.NewFromInt(1000), Frequency: domain.Daily})

	var wg sync.WaitGroup
	results := make([]*domain.ContributionRunResult, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.svc.Contributions.RunScheduledContributions(s.ctx)
			if err == nil {
				results[i] = res
			}
		}()
	}
	wg.Wait()

	s.Require().NotNil(results[0])
	s.Require().NotNil(results[1])
	s.Equal(1, results[0].Processed+results[1].Processed)
	s.Equal(1, results[0].Skipped+results[1].Skipped)
	s.assertBalance(s.alice.AccountID, 9000)
}

func (s *ContributionSchedulerTestSuite) TestRun_UnknownFrequencyFails() {
	s.seedGoal(domain.SavingsGoal{GoalID: "g1", UserID: s.alice.AccountID, Name: "Odd",
		TargetAmount: decimal.NewFromInt(100), FrequencyAmount: decimal.NewFromInt(10), Frequency: "hourly"})

	res, err := s.svc.Contributions.RunScheduledContributions(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.ContributionRunResult{Failed: 1}, *res)
	s.assertBalance(s.alice.AccountID, 10000)
}
