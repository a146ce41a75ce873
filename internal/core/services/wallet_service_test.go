package services_test

import (
	"testing"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/stretchr/testify/suite"
)

type WalletServiceTestSuite struct {
	ledgerSuite
}

func TestWalletServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) TestGetWallet() {
	acc, err := s.svc.Wallet.GetWallet(s.ctx, s.alice.AccountID)
	s.Require().NoError(err)
	s.Equal(s.alice.AccountID, acc.AccountID)

	_, err = s.svc.Wallet.GetWallet(s.ctx, "")
	s.ErrorIs(err, apperrors.ErrUnauthenticated)

	_, err = s.svc.Wallet.GetWallet(s.ctx, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *WalletServiceTestSuite) TestListTransactions_Pages() {
	for range 3 {
		_, err := s.svc.Payment.ProcessPayment(s.ctx, s.pay(s.bob.Email, 10))
		s.Require().NoError(err)
	}

	first, err := s.svc.Wallet.ListTransactions(s.ctx, s.alice.AccountID, dto.ListParams{Limit: 2})
	s.Require().NoError(err)
	s.Len(first.Transactions, 2)
	s.Require().NotNil(first.NextToken)

	second, err := s.svc.Wallet.ListTransactions(s.ctx, s.alice.AccountID, dto.ListParams{Limit: 2, NextToken: first.NextToken})
	s.Require().NoError(err)
	s.Len(second.Transactions, 1)
	s.Nil(second.NextToken)
	s.NotEqual(first.Transactions[1].TransactionID, second.Transactions[0].TransactionID)

	bad := "not-a-token"
	_, err = s.svc.Wallet.ListTransactions(s.ctx, s.alice.AccountID, dto.ListParams{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *WalletServiceTestSuite) TestNotifications_MarkRead() {
	_, err := s.svc.Payment.ProcessPayment(s.ctx, s.pay(s.bob.Email, 10))
	s.Require().NoError(err)

	page, err := s.svc.Wallet.ListNotifications(s.ctx, s.bob.AccountID, dto.ListParams{})
	s.Require().NoError(err)
	s.Require().Len(page.Notifications, 1)
	id := page.Notifications[0].NotificationID
	s.False(page.Notifications[0].Read)

	s.ErrorIs(s.svc.Wallet.MarkNotificationRead(s.ctx, s.alice.AccountID, id), apperrors.ErrNotFound)
	s.Require().NoError(s.svc.Wallet.MarkNotificationRead(s.ctx, s.bob.AccountID, id))

	page, err = s.svc.Wallet.ListNotifications(s.ctx, s.bob.AccountID, dto.ListParams{})
	s.Require().NoError(err)
	s.True(page.Notifications[0].Read)

	empty, err := s.svc.Wallet.ListNotifications(s.ctx, "nobody", dto.ListParams{})
	s.Require().NoError(err)
	s.NotNil(empty.Notifications)
	s.Empty(empty.Notifications)
}
