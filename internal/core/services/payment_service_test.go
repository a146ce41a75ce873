package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	"github.com/enkamba/enkamba_payments/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	ledgerSuite
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (s *PaymentServiceTestSuite) TestProcessPayment_WalletTransferByEmail() {
	res, err := s.svc.Payment.ProcessPayment(s.ctx, s.pay("BOB@enkamba.cd", 2500))
	s.Require().NoError(err)

	s.Equal(s.bob.AccountID, res.RecipientID)
	s.Equal(domain.StrategyEmail, res.ResolvedBy)
	s.True(decimal.NewFromInt(7500).Equal(res.NewBalance))
	s.assertBalance(s.alice.AccountID, 7500)
	s.assertBalance(s.bob.AccountID, 3000)

	sent, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, res.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TransferSent, sent.Type)
	s.Equal(domain.StatusCompleted, sent.Status)
	s.Equal("CDF", sent.Currency)
	s.True(decimal.NewFromInt(10000).Equal(sent.PreviousBalance))
	s.True(decimal.NewFromInt(7500).Equal(sent.NewBalance))

	received, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, res.RecipientTransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TransferReceived, received.Type)
	s.Equal(s.alice.AccountID, received.CounterpartyID)

	bobNotes := s.notifications(s.bob.AccountID)
	s.Require().Len(bobNotes, 1)
	s.Equal(domain.NotifyTransferReceived, bobNotes[0].Type)
	s.Contains(bobNotes[0].Message, "Alice Mbuyi")
	s.NotContains(bobNotes[0].Message, s.alice.Email)
	s.Len(s.notifications(s.alice.AccountID), 1)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_MarketplaceUsesPaymentTypes() {
	req := s.pay(s.bob.PhoneNumber, 100)
	req.Method = domain.MethodPhone
	req.Context = domain.ContextMarketplace

	res, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(domain.StrategyPhoneNumber, res.ResolvedBy)

	sent, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, res.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentSent, sent.Type)
	s.Equal(domain.ContextMarketplace, sent.Context)
	s.Equal(domain.NotifyPaymentReceived, s.notifications(s.bob.AccountID)[0].Type)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_EmptyContextDefaultsToWallet() {
	req := s.pay(s.bob.Email, 100)
	req.Context = ""

	res, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)
	sent, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, res.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.ContextWallet, sent.Context)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_ProximityAndQRCodeUseRawID() {
	req := s.pay("", 100)
	req.Method = domain.MethodBluetooth
	req.RecipientID = s.bob.AccountID
	res, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(domain.StrategyID, res.ResolvedBy)

	req = s.pay("", 100)
	req.Method = domain.MethodQRCode
	req.QRCodeData = s.bob.AccountID
	_, err = s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)

	s.assertBalance(s.bob.AccountID, 700)

	req = s.pay("", 100)
	req.Method = domain.MethodWifi
	_, err = s.svc.Payment.ProcessPayment(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_InsufficientFundsLeavesNoTrace() {
	_, err := s.svc.Payment.ProcessPayment(s.ctx, s.pay(s.bob.Email, 10001))
	s.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)

	s.assertBalance(s.alice.AccountID, 10000)
	s.assertBalance(s.bob.AccountID, 500)
	s.Empty(s.transactions(s.alice.AccountID))
	s.Empty(s.notifications(s.bob.AccountID))
}

func (s *PaymentServiceTestSuite) TestProcessPayment_ExactBalanceDrainsToZero() {
	_, err := s.svc.Payment.ProcessPayment(s.ctx, s.pay(s.bob.Email, 10000))
	s.Require().NoError(err)
	s.assertBalance(s.alice.AccountID, 0)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_SelfPaymentRejected() {
	_, err := s.svc.Payment.ProcessPayment(s.ctx, s.pay(s.alice.Email, 100))
	s.Require().ErrorIs(err, apperrors.ErrSelfPayment)
	s.assertBalance(s.alice.AccountID, 10000)
	s.Empty(s.transactions(s.alice.AccountID))
}

func (s *PaymentServiceTestSuite) TestProcessPayment_PreconditionOrder() {
	tests := []struct {
		name   string
		mutate func(*domain.PaymentRequest)
		want   error
	}{
		{"missing caller", func(r *domain.PaymentRequest) { r.CallerID = "" }, apperrors.ErrUnauthenticated},
		{"caller is not payer", func(r *domain.PaymentRequest) { r.CallerID = s.bob.AccountID }, apperrors.ErrForbidden},
		{"zero amount", func(r *domain.PaymentRequest) { r.Amount = decimal.Zero }, apperrors.ErrValidation},
		{"amount finer than storage scale", func(r *domain.PaymentRequest) { r.Amount = decimal.RequireFromString("0.00005") }, apperrors.ErrValidation},
		{"negative amount beats unknown method", func(r *domain.PaymentRequest) {
			r.Amount = decimal.NewFromInt(-5)
			r.Method = "pigeon"
		}, apperrors.ErrValidation},
		{"unknown method", func(r *domain.PaymentRequest) { r.Method = "pigeon" }, apperrors.ErrValidation},
		{"unknown context", func(r *domain.PaymentRequest) { r.Context = "casino" }, apperrors.ErrValidation},
		{"insufficient before recipient lookup", func(r *domain.PaymentRequest) {
			r.Amount = decimal.NewFromInt(20000)
			r.RecipientIdentifier = "nobody@enkamba.cd"
		}, apperrors.ErrInsufficientFunds},
		{"unknown recipient", func(r *domain.PaymentRequest) { r.RecipientIdentifier = "nobody@enkamba.cd" }, apperrors.ErrNotFound},
		{"missing identifier", func(r *domain.PaymentRequest) { r.RecipientIdentifier = "  " }, apperrors.ErrValidation},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			req := s.pay(s.bob.Email, 100)
			tc.mutate(&req)
			_, err := s.svc.Payment.ProcessPayment(s.ctx, req)
			s.ErrorIs(err, tc.want)
		})
	}
	s.assertBalance(s.alice.AccountID, 10000)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_UnknownPayer() {
	req := s.pay(s.bob.Email, 100)
	req.CallerID = "ghost"
	req.PayerID = "ghost"
	_, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_IdempotentReplay() {
	req := s.pay(s.bob.Email, 6000)
	req.IdempotencyKey = "order-42"

	first, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)
	s.False(first.Replayed)

	// The first attempt left 4000, so a fresh debit of 6000 would fail.
	second, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)
	s.True(second.Replayed)
	s.Equal(first.TransactionID, second.TransactionID)
	s.Equal(first.RecipientTransactionID, second.RecipientTransactionID)
	s.True(first.NewBalance.Equal(second.NewBalance))

	s.assertBalance(s.alice.AccountID, 4000)
	s.assertBalance(s.bob.AccountID, 6500)
	s.Len(s.transactions(s.alice.AccountID), 1)

	req.Amount = decimal.NewFromInt(10)
	_, err = s.svc.Payment.ProcessPayment(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_ReplayWithDifferentDetailsRejected() {
	req := s.pay(s.bob.Email, 100)
	req.IdempotencyKey = "order-43"
	req.Description = "rent"
	req.Metadata = map[string]string{"orderId": "A1", "shop": "kin"}
	_, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)

	same := req
	same.Metadata = map[string]string{"shop": "kin", "orderId": "A1"}
	replayed, err := s.svc.Payment.ProcessPayment(s.ctx, same)
	s.Require().NoError(err)
	s.True(replayed.Replayed)

	changedMeta := req
	changedMeta.Metadata = map[string]string{"orderId": "B2", "shop": "kin"}
	_, err = s.svc.Payment.ProcessPayment(s.ctx, changedMeta)
	s.ErrorIs(err, apperrors.ErrValidation)

	changedDesc := req
	changedDesc.Description = "groceries"
	_, err = s.svc.Payment.ProcessPayment(s.ctx, changedDesc)
	s.ErrorIs(err, apperrors.ErrValidation)

	s.assertBalance(s.alice.AccountID, 9900)
}

func (s *PaymentServiceTestSuite) TestProcessPayment_FourDecimalAmountIsExact() {
	req := s.pay(s.bob.Email, 0)
	req.Amount = decimal.RequireFromString("0.0001")
	res, err := s.svc.Payment.ProcessPayment(s.ctx, req)
	s.Require().NoError(err)

	s.True(decimal.RequireFromString("9999.9999").Equal(res.NewBalance))
	s.True(decimal.RequireFromString("9999.9999").Equal(s.balance(s.alice.AccountID)))
	s.True(decimal.RequireFromString("500.0001").Equal(s.balance(s.bob.AccountID)))
}

func (s *PaymentServiceTestSuite) TestConcurrentDebits_NoLostUpdate() {
	const (
		workers = 20
		amount  = 700
	)
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		sent      atomic.Int64
		withdrawn atomic.Int64
	)
	unexpected := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = s.svc.Payment.ProcessPayment(s.ctx, s.pay(s.bob.Email, amount))
				if err == nil {
					sent.Add(1)
				}
			} else {
				_, err = s.svc.Withdrawal.Withdraw(s.ctx, domain.WithdrawalRequest{
					CallerID: s.alice.AccountID,
					UserID:   s.alice.AccountID,
					Amount:   decimal.NewFromInt(amount),
					Method:   domain.WithdrawAgent,
				})
				if err == nil {
					withdrawn.Add(1)
				}
			}
			switch {
			case err == nil:
				succeeded.Add(1)
			case !errors.Is(err, apperrors.ErrInsufficientFunds):
				unexpected <- err
			}
		}(i)
	}
	wg.Wait()
	close(unexpected)
	for err := range unexpected {
		s.Failf("unexpected error", "%v", err)
	}

	// 10000 / 700 allows exactly 14 debits.
	s.Equal(int64(14), succeeded.Load())
	s.assertBalance(s.alice.AccountID, 10000-amount*succeeded.Load())
	s.assertBalance(s.bob.AccountID, 500+amount*sent.Load())
	s.False(s.balance(s.alice.AccountID).IsNegative())
	s.Len(s.transactions(s.alice.AccountID), int(sent.Load()+withdrawn.Load()))
}

func (s *PaymentServiceTestSuite) TestProcessPayment_ConservesTotalBalance() {
	carol := s.seedAccount(domain.Account{DisplayName: "Carol", Email: "carol@enkamba.cd", Balance: decimal.NewFromInt(50)})
	total := func() decimal.Decimal {
		return s.balance(s.alice.AccountID).Add(s.balance(s.bob.AccountID)).Add(s.balance(carol.AccountID))
	}
	before := total()

	for _, step := range []struct {
		from, to string
		amount   int64
	}{
		{s.alice.AccountID, carol.Email, 1234},
		{carol.AccountID, s.bob.Email, 1000},
		{s.bob.AccountID, s.alice.Email, 9999},
		{s.bob.AccountID, carol.Email, 1500},
	} {
		req := s.pay(step.to, step.amount)
		req.CallerID, req.PayerID = step.from, step.from
		_, _ = s.svc.Payment.ProcessPayment(s.ctx, req)
		s.True(before.Equal(total()), "total changed after %d from %s", step.amount, step.from)
		for _, id := range []string{s.alice.AccountID, s.bob.AccountID, carol.AccountID} {
			s.False(s.balance(id).IsNegative())
		}
	}
}

// --- Mock AccountReader ---
type MockAccountReader struct {
	mock.Mock
}

func (m *MockAccountReader) result(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return m.result(m.Called(ctx, accountID))
}

func (m *MockAccountReader) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return m.result(m.Called(ctx, email))
}

func (m *MockAccountReader) FindAccountByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return m.result(m.Called(ctx, accountNumber))
}

func (m *MockAccountReader) FindAccountByCardNumber(ctx context.Context, variants []string) (*domain.Account, error) {
	return m.result(m.Called(ctx, variants))
}

func (m *MockAccountReader) FindAccountByPhoneNumber(ctx context.Context, variants []string) (*domain.Account, error) {
	return m.result(m.Called(ctx, variants))
}

func (m *MockAccountReader) ListAccountsAfter(ctx context.Context, afterAccountID string, limit int) ([]domain.Account, error) {
	args := m.Called(ctx, afterAccountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReader) SaveAccount(ctx context.Context, account domain.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountReader) SetAccountNumber(ctx context.Context, accountID string, accountNumber string) error {
	return m.Called(ctx, accountID, accountNumber).Error(0)
}

// --- Mock LedgerSvc ---
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Post(ctx context.Context, posting domain.Posting) (*domain.PostingResult, error) {
	args := m.Called(ctx, posting)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingResult), args.Error(1)
}

func (m *MockLedger) Replay(ctx context.Context, ownerAccountID string, key string) (*domain.IdempotencyRecord, error) {
	args := m.Called(ctx, ownerAccountID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IdempotencyRecord), args.Error(1)
}

func TestProcessPayment_StoreFailureIsInternalNotNotFound(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountReader)
	ledger := new(MockLedger)
	svc := services.NewPaymentService(accounts, services.NewResolverService(accounts, "ENK", 10), ledger, "CDF")

	storeErr := apperrors.NewAppError(500, "connection reset", assert.AnError)
	accounts.On("FindAccountByID", ctx, "payer").Return(nil, storeErr).Once()

	_, err := svc.ProcessPayment(ctx, domain.PaymentRequest{
		CallerID:            "payer",
		PayerID:             "payer",
		Amount:              decimal.NewFromInt(10),
		Method:              domain.MethodEmail,
		Context:             domain.ContextWallet,
		RecipientIdentifier: "someone@enkamba.cd",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	ledger.AssertNotCalled(t, "Post", mock.Anything, mock.Anything)
	accounts.AssertExpectations(t)
}

func TestProcessPayment_ResolverFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountReader)
	ledger := new(MockLedger)
	svc := services.NewPaymentService(accounts, services.NewResolverService(accounts, "ENK", 10), ledger, "CDF")

	payer := &domain.Account{AccountID: "payer", Balance: decimal.NewFromInt(100)}
	accounts.On("FindAccountByID", ctx, "payer").Return(payer, nil).Once()
	accounts.On("FindAccountByEmail", ctx, "someone@enkamba.cd").Return(nil, assert.AnError).Once()

	_, err := svc.ProcessPayment(ctx, domain.PaymentRequest{
		CallerID:            "payer",
		PayerID:             "payer",
		Amount:              decimal.NewFromInt(10),
		Method:              domain.MethodEmail,
		Context:             domain.ContextWallet,
		RecipientIdentifier: "someone@enkamba.cd",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.NotContains(t, apperrors.PublicMessage(err), assert.AnError.Error())
	ledger.AssertNotCalled(t, "Post", mock.Anything, mock.Anything)
}
