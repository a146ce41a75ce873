package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/enkamba/enkamba_payments/internal/apperrors"
	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/core/services"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/enkamba/enkamba_payments/internal/handlers"
	"github.com/enkamba/enkamba_payments/internal/platform/config"
	"github.com/enkamba/enkamba_payments/internal/repositories/database/memory"
	"github.com/enkamba/enkamba_payments/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "enkamba-test"
	testAPIKey = "jobs-key"
)

func testConfig() *config.Config {
	return &config.Config{
		IsProduction:          true,
		JWTSecret:             testSecret,
		JWTIssuer:             testIssuer,
		JobsAPIKey:            testAPIKey,
		RateLimit:             "1000-M",
		BaseCurrency:          "CDF",
		AccountNumberPrefix:   "ENK",
		ArchiveRetention:      365 * 24 * time.Hour,
		ArchiveBatchSize:      100,
		ContributionWorkers:   2,
		ResolverScanBatchSize: 100,
	}
}

type HandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	repos  portsrepo.RepositoryProvider
	alice  domain.Account
	bob    domain.Account
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	s.repos = memory.NewRepositoryProvider(memory.NewStore())

	s.alice = domain.Account{AccountID: uuid.NewString(), DisplayName: "Alice", Email: "alice@enkamba.cd", Balance: decimal.NewFromInt(1000)}
	s.bob = domain.Account{AccountID: uuid.NewString(), DisplayName: "Bob", Email: "bob@enkamba.cd", PhoneNumber: "+243820000002", Balance: decimal.NewFromInt(50)}
	ctx := context.Background()
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(ctx, s.alice))
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(ctx, s.bob))

	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, services.NewServiceContainer(cfg, s.repos)))
}

func bearer(t require.TestingT, userID string) string {
	token, err := utils.GenerateJWT(userID, testSecret, time.Hour, testIssuer)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *HandlerTestSuite) do(method, path, auth string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) errorBody(w *httptest.ResponseRecorder) dto.ErrorResponse {
	var body dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.False(body.Success)
	return body
}

func (s *HandlerTestSuite) payment(amount int64, identifier string) gin.H {
	return gin.H{
		"payerId":             s.alice.AccountID,
		"amount":              amount,
		"paymentMethod":       "email",
		"context":             "wallet",
		"recipientIdentifier": identifier,
	}
}

func (s *HandlerTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *HandlerTestSuite) TestProcessPayment_RequiresToken() {
	w := s.do(http.MethodPost, "/api/v1/payments", "", s.payment(100, s.bob.Email))
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(apperrors.CodeUnauthenticated, s.errorBody(w).Error.Code)

	wrongIssuer, err := utils.GenerateJWT(s.alice.AccountID, testSecret, time.Hour, "someone-else")
	s.Require().NoError(err)
	w = s.do(http.MethodPost, "/api/v1/payments", "Bearer "+wrongIssuer, s.payment(100, s.bob.Email))
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestProcessPayment_Success() {
	w := s.do(http.MethodPost, "/api/v1/payments", bearer(s.T(), s.alice.AccountID), s.payment(300, s.bob.Email))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var body dto.ProcessPaymentResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.True(body.Success)
	s.NotEmpty(body.TransactionID)
	s.True(decimal.NewFromInt(700).Equal(body.NewBalance))
}

func (s *HandlerTestSuite) TestProcessPayment_ErrorMapping() {
	tests := []struct {
		name   string
		caller string
		body   gin.H
		status int
		code   string
	}{
		{"insufficient", s.alice.AccountID, s.payment(5000, s.bob.Email), http.StatusPreconditionFailed, apperrors.CodeFailedPrecondition},
		{"not the payer", s.bob.AccountID, s.payment(10, s.bob.Email), http.StatusForbidden, apperrors.CodePermissionDenied},
		{"self payment", s.alice.AccountID, s.payment(10, s.alice.Email), http.StatusBadRequest, apperrors.CodeInvalidArgument},
		{"unknown recipient", s.alice.AccountID, s.payment(10, "ghost@enkamba.cd"), http.StatusNotFound, apperrors.CodeNotFound},
		{"zero amount", s.alice.AccountID, s.payment(0, s.bob.Email), http.StatusBadRequest, apperrors.CodeInvalidArgument},
		{"bad method", s.alice.AccountID, gin.H{"payerId": s.alice.AccountID, "amount": 1, "paymentMethod": "fax", "context": "wallet"}, http.StatusBadRequest, apperrors.CodeInvalidArgument},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			w := s.do(http.MethodPost, "/api/v1/payments", bearer(s.T(), tc.caller), tc.body)
			s.Equal(tc.status, w.Code, w.Body.String())
			s.Equal(tc.code, s.errorBody(w).Error.Code)
		})
	}
}

func (s *HandlerTestSuite) TestProcessPayment_IdempotencyHeader() {
	auth := bearer(s.T(), s.alice.AccountID)
	first := s.do(http.MethodPost, "/api/v1/payments", auth, s.payment(600, s.bob.Email), "Idempotency-Key", "k-1")
	s.Require().Equal(http.StatusOK, first.Code)
	second := s.do(http.MethodPost, "/api/v1/payments", auth, s.payment(600, s.bob.Email), "Idempotency-Key", "k-1")
	s.Require().Equal(http.StatusOK, second.Code, second.Body.String())

	var a, b dto.ProcessPaymentResponse
	s.Require().NoError(json.Unmarshal(first.Body.Bytes(), &a))
	s.Require().NoError(json.Unmarshal(second.Body.Bytes(), &b))
	s.Equal(a.TransactionID, b.TransactionID)
	s.True(b.Replayed)

	acc, err := s.repos.AccountRepo.FindAccountByID(context.Background(), s.alice.AccountID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(400).Equal(acc.Balance))
}

func (s *HandlerTestSuite) TestWithdrawAndSettle() {
	w := s.do(http.MethodPost, "/api/v1/withdrawals", bearer(s.T(), s.alice.AccountID), gin.H{
		"userId":           s.alice.AccountID,
		"amount":           "250",
		"withdrawalMethod": "agent",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var wd dto.WithdrawResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &wd))
	s.Equal(domain.StatusPending, wd.Status)
	s.Len(wd.PickupCode, 6)

	settlePath := "/internal/withdrawals/" + wd.TransactionID + "/settle"
	w = s.do(http.MethodPost, settlePath, "", gin.H{"outcome": "failed"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, settlePath, "", gin.H{"outcome": "failed"}, "x-api-key", testAPIKey)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var txn dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &txn))
	s.Equal(domain.StatusFailed, txn.Status)

	w = s.do(http.MethodPost, settlePath, "", gin.H{"outcome": "completed"}, "x-api-key", testAPIKey)
	s.Equal(http.StatusPreconditionFailed, w.Code)
}

func (s *HandlerTestSuite) TestWallet() {
	auth := bearer(s.T(), s.bob.AccountID)
	w := s.do(http.MethodGet, "/api/v1/wallet", auth, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var wallet dto.WalletResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &wallet))
	s.Equal(s.bob.AccountID, wallet.AccountID)
	s.Equal("CDF", wallet.Currency)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/v1/payments", bearer(s.T(), s.alice.AccountID), s.payment(10, s.bob.Email)).Code)

	w = s.do(http.MethodGet, "/api/v1/wallet/transactions?limit=5", auth, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var txns dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &txns))
	s.Len(txns.Transactions, 1)

	w = s.do(http.MethodGet, "/api/v1/wallet/transactions?limit=500", auth, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/wallet/notifications", auth, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var notes dto.ListNotificationsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &notes))
	s.Require().Len(notes.Notifications, 1)

	w = s.do(http.MethodPost, "/api/v1/wallet/notifications/"+notes.Notifications[0].NotificationID+"/read", auth, nil)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodPost, "/api/v1/wallet/notifications/"+notes.Notifications[0].NotificationID+"/read", bearer(s.T(), s.alice.AccountID), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestResolveRecipient_ExposesOnlyPublicFields() {
	w := s.do(http.MethodGet, "/api/v1/recipients/resolve?identifier=%2B243820000002", bearer(s.T(), s.alice.AccountID), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var raw map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &raw))
	s.Equal(s.bob.AccountID, raw["accountId"])
	s.Equal("Bob", raw["displayName"])
	s.Equal(string(domain.StrategyPhoneNumber), raw["strategy"])
	s.Len(raw, 3)
	s.NotContains(w.Body.String(), s.bob.Email)

	w = s.do(http.MethodGet, "/api/v1/recipients/resolve", bearer(s.T(), s.alice.AccountID), nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestJobs() {
	ctx := context.Background()
	s.Require().NoError(s.repos.SavingsGoalRepo.SaveGoal(ctx, domain.SavingsGoal{
		GoalID: "g1", UserID: s.alice.AccountID, Name: "Fees", Currency: "CDF", Status: domain.GoalActive,
		TargetAmount: decimal.NewFromInt(1000), FrequencyAmount: decimal.NewFromInt(100), Frequency: domain.Daily,
	}))

	w := s.do(http.MethodPost, "/internal/jobs/contributions", "", nil, "x-api-key", "wrong")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/internal/jobs/contributions", "", nil, "x-api-key", testAPIKey)
	s.Require().Equal(http.StatusOK, w.Code)
	var run domain.ContributionRunResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &run))
	s.Equal(domain.ContributionRunResult{Processed: 1}, run)

	w = s.do(http.MethodPost, "/internal/jobs/archive", "", nil, "x-api-key", testAPIKey)
	s.Require().Equal(http.StatusOK, w.Code)
	var sweep domain.ArchivalRunResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &sweep))
	s.Equal(domain.ArchivalRunResult{}, sweep)
}

// --- Mock PaymentSvc ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ProcessPayment(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

var _ portssvc.PaymentSvc = (*MockPaymentService)(nil)

func TestProcessPayment_InternalErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	paymentSvc := new(MockPaymentService)
	container := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(memory.NewStore()))
	container.Payment = paymentSvc

	router := gin.New()
	require.NoError(t, handlers.RegisterRoutes(router, cfg, container))

	cause := apperrors.NewAppError(http.StatusInternalServerError, "pg: connection refused", assert.AnError)
	paymentSvc.On("ProcessPayment", mock.Anything, mock.MatchedBy(func(r domain.PaymentRequest) bool {
		return r.CallerID == "payer-1" && r.IdempotencyKey == "hdr-key"
	})).Return(nil, cause).Once()

	body := `{"payerId":"payer-1","amount":10,"paymentMethod":"email","context":"wallet","recipientIdentifier":"x@enkamba.cd"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "payer-1"))
	req.Header.Set("Idempotency-Key", "hdr-key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.CodeInternal, resp.Error.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	paymentSvc.AssertExpectations(t)
}
