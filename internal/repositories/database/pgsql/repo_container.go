package pgsql

import (
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every PostgreSQL repository onto one pool.
// maxRetries bounds re-runs of transactions aborted by serialization failures or deadlocks.
func NewRepositoryProvider(dbPool *pgxpool.Pool, maxRetries int) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		LedgerRepo:       newPgxLedgerRepository(dbPool, maxRetries),
		TransactionRepo:  newPgxTransactionRepository(dbPool, maxRetries),
		NotificationRepo: newPgxNotificationRepository(dbPool),
		SavingsGoalRepo:  newPgxSavingsGoalRepository(dbPool),
	}
}
