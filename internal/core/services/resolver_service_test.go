package services_test

import (
	"context"
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

type ResolverServiceTestSuite struct {
	ledgerSuite
}

func TestResolverServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverServiceTestSuite))
}

func (s *ResolverServiceTestSuite) TestResolve_EachStrategy() {
	tests := []struct {
		name       string
		identifier string
		wantID     string
		strategy   domain.Strategy
	}{
		{"raw id", s.bob.AccountID, s.bob.AccountID, domain.StrategyID},
		{"email ignores case", "  Bob@ENKAMBA.cd ", s.bob.AccountID, domain.StrategyEmail},
		{"derived account number", domain.DeriveAccountNumber("ENK", s.bob.AccountID), s.bob.AccountID, domain.StrategyAccountNumber},
		{"lower-case account number", "enk" + domain.DeriveAccountNumber("", s.alice.AccountID), s.alice.AccountID, domain.StrategyAccountNumber},
		{"card as stored", "4111 1111 1111 1111", s.bob.AccountID, domain.StrategyCardNumber},
		{"card without spaces", "4111111111111111", s.bob.AccountID, domain.StrategyCardNumber},
		{"phone", "+243 820-000-002", s.bob.AccountID, domain.StrategyPhoneNumber},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			res, err := s.svc.Resolver.Resolve(s.ctx, tc.identifier)
			s.Require().NoError(err)
			s.Equal(tc.wantID, res.Account.AccountID)
			s.Equal(tc.strategy, res.Strategy)
		})
	}
}

func (s *ResolverServiceTestSuite) TestResolve_DerivedNumberIsCached() {
	number := domain.DeriveAccountNumber("ENK", s.bob.AccountID)
	_, err := s.svc.Resolver.Resolve(s.ctx, number)
	s.Require().NoError(err)

	acc, err := s.repos.AccountRepo.FindAccountByAccountNumber(s.ctx, number)
	s.Require().NoError(err)
	s.Equal(s.bob.AccountID, acc.AccountID)
}

func (s *ResolverServiceTestSuite) TestResolve_EarlierStrategyWins() {
	// An account whose email would also match a later strategy is still found by email.
	digits := s.seedAccount(domain.Account{Email: "243820000002@enkamba.cd", Balance: decimal.Zero})
	res, err := s.svc.Resolver.Resolve(s.ctx, "243820000002@enkamba.cd")
	s.Require().NoError(err)
	s.Equal(digits.AccountID, res.Account.AccountID)
	s.Equal(domain.StrategyEmail, res.Strategy)
}

func (s *ResolverServiceTestSuite) TestResolve_NotFoundAndEmpty() {
	_, err := s.svc.Resolver.Resolve(s.ctx, "nobody@enkamba.cd")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.svc.Resolver.Resolve(s.ctx, "ENK0000000000")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.svc.Resolver.Resolve(s.ctx, "hello")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.svc.Resolver.Resolve(s.ctx, "   ")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ResolverServiceTestSuite) TestResolve_LabelNeverLeaksContact() {
	anon := s.seedAccount(domain.Account{Email: "anon@enkamba.cd"})
	res, err := s.svc.Resolver.Resolve(s.ctx, anon.Email)
	s.Require().NoError(err)
	s.Equal("an eNkamba user", res.Account.Label())
}

func TestResolve_LookupFailureIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountReader)
	resolver := services.NewResolverService(accounts, "ENK", 10)

	accounts.On("FindAccountByEmail", ctx, "x@enkamba.cd").Return(nil, assert.AnError).Once()

	_, err := resolver.Resolve(ctx, "x@enkamba.cd")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)
	accounts.AssertNotCalled(t, "FindAccountByPhoneNumber", mock.Anything, mock.Anything)
}

func TestResolve_CacheFailureDoesNotFailResolution(t *testing.T) {
	ctx := context.Background()
	accounts := new(MockAccountReader)
	resolver := services.NewResolverService(accounts, "ENK", 10)

	target := domain.Account{AccountID: "acc-1"}
	number := domain.DeriveAccountNumber("ENK", target.AccountID)

	accounts.On("FindAccountByAccountNumber", ctx, number).Return(nil, apperrors.ErrNotFound).Once()
	accounts.On("ListAccountsAfter", ctx, "", 10).Return([]domain.Account{target}, nil).Once()
	accounts.On("SetAccountNumber", ctx, target.AccountID, number).Return(assert.AnError).Once()

	res, err := resolver.Resolve(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, target.AccountID, res.Account.AccountID)
	assert.Equal(t, number, res.Account.AccountNumber)
	accounts.AssertExpectations(t)
}
