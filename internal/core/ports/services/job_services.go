package services

import (
	"context"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
)

// ContributionSchedulerSvc is invoked by the external clock.
type ContributionSchedulerSvc interface {
	// RunScheduledContributions processes every active goal independently.
	// Per-goal failures are counted, never returned.
	RunScheduledContributions(ctx context.Context) (*domain.ContributionRunResult, error)
}

// ArchivalSvc is invoked by the external clock.
type ArchivalSvc interface {
	// RunArchivalSweep moves records older than the retention window to the archive.
	RunArchivalSweep(ctx context.Context) (*domain.ArchivalRunResult, error)
}
