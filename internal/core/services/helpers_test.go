package services_test

import (
	"context"
	"time"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/core/services"
	"github.com/enkamba/enkamba_payments/internal/platform/config"
	"github.com/enkamba/enkamba_payments/internal/repositories/database/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// ledgerSuite wires every service against one in-memory store.
type ledgerSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer

	alice domain.Account
	bob   domain.Account
}

func testConfig() *config.Config {
	return &config.Config{
		BaseCurrency:          "CDF",
		AccountNumberPrefix:   "ENK",
		ArchiveRetention:      90 * 24 * time.Hour,
		ArchiveBatchSize:      2,
		ContributionWorkers:   4,
		ResolverScanBatchSize: 2,
		LedgerMaxRetries:      3,
	}
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.repos = memory.NewRepositoryProvider(s.store)
	s.svc = services.NewServiceContainer(testConfig(), s.repos)

	s.alice = s.seedAccount(domain.Account{
		DisplayName: "Alice Mbuyi",
		Email:       "alice@enkamba.cd",
		PhoneNumber: "+243810000001",
		Balance:     decimal.NewFromInt(10000),
	})
	s.bob = s.seedAccount(domain.Account{
		DisplayName: "Bob Kasongo",
		Email:       "bob@enkamba.cd",
		PhoneNumber: "+243820000002",
		CardNumber:  "4111 1111 1111 1111",
		Balance:     decimal.NewFromInt(500),
	})
}

func (s *ledgerSuite) seedAccount(acc domain.Account) domain.Account {
	if acc.AccountID == "" {
		acc.AccountID = uuid.NewString()
	}
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, acc))
	return acc
}

func (s *ledgerSuite) balance(accountID string) decimal.Decimal {
	acc, err := s.repos.AccountRepo.FindAccountByID(s.ctx, accountID)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *ledgerSuite) assertBalance(accountID string, want int64) {
	got := s.balance(accountID)
	s.Truef(decimal.NewFromInt(want).Equal(got), "balance of %s: want %d, got %s", accountID, want, got)
}

func (s *ledgerSuite) transactions(accountID string) []domain.Transaction {
	txns, _, err := s.repos.TransactionRepo.ListTransactionsByAccount(s.ctx, accountID, 100, nil)
	s.Require().NoError(err)
	return txns
}

func (s *ledgerSuite) notifications(accountID string) []domain.Notification {
	items, _, err := s.repos.NotificationRepo.ListNotificationsByAccount(s.ctx, accountID, 100, nil)
	s.Require().NoError(err)
	return items
}

func (s *ledgerSuite) pay(identifier string, amount int64) domain.PaymentRequest {
	return domain.PaymentRequest{
		CallerID:            s.alice.AccountID,
		PayerID:             s.alice.AccountID,
		Amount:              decimal.NewFromInt(amount),
		Method:              domain.MethodEmail,
		Context:             domain.ContextWallet,
		RecipientIdentifier: identifier,
	}
}
