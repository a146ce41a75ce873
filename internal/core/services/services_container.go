package services

import (
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Every engine shares one ledger so balances have a single writer.
	container.Ledger = NewLedgerService(repos.LedgerRepo)
	container.Resolver = NewResolverService(repos.AccountRepo, cfg.AccountNumberPrefix, cfg.ResolverScanBatchSize)

	container.Payment = NewPaymentService(repos.AccountRepo, container.Resolver, container.Ledger, cfg.BaseCurrency)
	container.Withdrawal = NewWithdrawalService(repos.AccountRepo, repos.TransactionRepo, container.Ledger, cfg.BaseCurrency)
	container.Wallet = NewWalletService(repos.AccountRepo, repos.TransactionRepo, repos.NotificationRepo)

	container.Contributions = NewContributionScheduler(
		repos.SavingsGoalRepo,
		repos.AccountRepo,
		repos.NotificationRepo,
		container.Ledger,
		cfg.ContributionWorkers,
	)
	container.Archival = NewArchivalService(repos.TransactionRepo, cfg.ArchiveRetention, cfg.ArchiveBatchSize)

	return container
}
