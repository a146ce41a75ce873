package handlers

import (
	"net/http"

	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/enkamba/enkamba_payments/internal/middleware"
	"github.com/gin-gonic/gin"
)

// walletHandler serves the caller's own wallet.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
	currency      string
}

func newWalletHandler(ws portssvc.WalletSvcFacade, currency string) *walletHandler {
	return &walletHandler{walletService: ws, currency: currency}
}

// registerWalletRoutes registers routes related to the caller's wallet.
func registerWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade, currency string) {
	h := newWalletHandler(walletService, currency)

	wallet := rg.Group("/wallet")
	{
		wallet.GET("", h.getWallet)
		wallet.GET("/transactions", h.listTransactions)
		wallet.GET("/notifications", h.listNotifications)
		wallet.POST("/notifications/:notificationID/read", h.markNotificationRead)
	}
}

// getWallet godoc
// @Summary Get the caller's wallet
// @Tags wallet
// @Produce  json
// @Success 200 {object} dto.WalletResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Security BearerAuth
// @Router /wallet [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, _ := middleware.GetUserIDFromContext(c)

	account, err := h.walletService.GetWallet(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, logger, err, "Failed to get wallet")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(account, h.currency))
}

// listTransactions godoc
// @Summary List the caller's transactions
// @Description Newest first. Pass nextToken from the previous page to continue.
// @Tags wallet
// @Produce  json
// @Param   limit query int false "Page size (1-100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Security BearerAuth
// @Router /wallet/transactions [get]
func (h *walletHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	callerID, _ := middleware.GetUserIDFromContext(c)

	res, err := h.walletService.ListTransactions(c.Request.Context(), callerID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, res)
}

// listNotifications godoc
// @Summary List the caller's notifications
// @Tags wallet
// @Produce  json
// @Param   limit query int false "Page size (1-100)"
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListNotificationsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Security BearerAuth
// @Router /wallet/notifications [get]
func (h *walletHandler) listNotifications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	callerID, _ := middleware.GetUserIDFromContext(c)

	res, err := h.walletService.ListNotifications(c.Request.Context(), callerID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, res)
}

// markNotificationRead godoc
// @Summary Mark a notification as read
// @Tags wallet
// @Param   notificationID path string true "Notification ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Security BearerAuth
// @Router /wallet/notifications/{notificationID}/read [post]
func (h *walletHandler) markNotificationRead(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	callerID, _ := middleware.GetUserIDFromContext(c)

	if err := h.walletService.MarkNotificationRead(c.Request.Context(), callerID, c.Param("notificationID")); err != nil {
		respondError(c, logger, err, "Failed to mark notification read")
		return
	}
	c.Status(http.StatusNoContent)
}
