package handlers

import (
	"log/slog"
	"net/http"

	"github.com/enkamba/enkamba_payments/internal/core/domain"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/enkamba/enkamba_payments/internal/middleware"
	"github.com/gin-gonic/gin"
)

// withdrawalHandler handles withdrawals and their settlement.
type withdrawalHandler struct {
	withdrawalService portssvc.WithdrawalSvcFacade
}

func newWithdrawalHandler(ws portssvc.WithdrawalSvcFacade) *withdrawalHandler {
	return &withdrawalHandler{withdrawalService: ws}
}

// registerWithdrawalRoutes registers the caller-facing withdrawal route.
func registerWithdrawalRoutes(rg *gin.RouterGroup, withdrawalService portssvc.WithdrawalSvcFacade) {
	h := newWithdrawalHandler(withdrawalService)
	rg.POST("/withdrawals", h.withdraw)
}

// registerSettlementRoutes registers the payout channel callback.
func registerSettlementRoutes(rg *gin.RouterGroup, withdrawalService portssvc.WithdrawalSvcFacade) {
	h := newWithdrawalHandler(withdrawalService)
	rg.POST("/withdrawals/:transactionID/settle", h.settleWithdrawal)
}

// withdraw godoc
// @Summary Withdraw funds
// @Description Debits the caller immediately and records a pending withdrawal. Agent withdrawals return a one-time pickup code.
// @Tags withdrawals
// @Accept  json
// @Produce  json
// @Param   withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Param   Idempotency-Key header string false "Client-generated retry token"
// @Success 200 {object} dto.WithdrawResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid argument"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 403 {object} dto.ErrorResponse "Not the account owner"
// @Failure 412 {object} dto.ErrorResponse "Insufficient balance"
// @Failure 500 {object} dto.ErrorResponse "Internal error"
// @Security BearerAuth
// @Router /withdrawals [post]
func (h *withdrawalHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader(idempotencyHeader)
	}

	callerID, _ := middleware.GetUserIDFromContext(c)
	logger = logger.With(slog.String("withdrawal_method", req.WithdrawalMethod))

	res, err := h.withdrawalService.Withdraw(c.Request.Context(), req.ToDomain(callerID))
	if err != nil {
		respondError(c, logger, err, "Withdrawal rejected")
		return
	}
	c.JSON(http.StatusOK, dto.ToWithdrawResponse(res))
}

// settleWithdrawal godoc
// @Summary Settle a pending withdrawal
// @Description Called by the payout channel. A failed outcome credits the amount back to the owner.
// @Tags internal
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Withdrawal transaction ID"
// @Param   outcome body dto.SettleWithdrawalRequest true "Payout outcome"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid argument"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure 404 {object} dto.ErrorResponse "Withdrawal not found"
// @Failure 412 {object} dto.ErrorResponse "Already settled differently"
// @Failure 500 {object} dto.ErrorResponse "Internal error"
// @Security ApiKeyAuth
// @Router /internal/withdrawals/{transactionID}/settle [post]
func (h *withdrawalHandler) settleWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	var req dto.SettleWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}

	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("outcome", req.Outcome))
	txn, err := h.withdrawalService.SettleWithdrawal(c.Request.Context(), transactionID, domain.WithdrawalOutcome(req.Outcome))
	if err != nil {
		respondError(c, logger, err, "Settlement rejected")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}
