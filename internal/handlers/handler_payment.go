package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/enkamba/enkamba_payments/internal/middleware"
	"github.com/gin-gonic/gin"
)

const idempotencyHeader = "Idempotency-Key"

// paymentHandler handles HTTP requests that move money between accounts.
type paymentHandler struct {
	paymentService portssvc.PaymentSvc
}

func newPaymentHandler(ps portssvc.PaymentSvc) *paymentHandler {
	return &paymentHandler{paymentService: ps}
}

// registerPaymentRoutes registers routes related to payments.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvc) {
	h := newPaymentHandler(paymentService)
	rg.POST("/payments", h.processPayment)
}

// processPayment godoc
// @Summary Send money to another account
// @Description Debits the caller and credits the recipient in one atomic posting. The recipient is designated by raw id (bluetooth, wifi), QR payload, or a resolvable identifier.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.ProcessPaymentRequest true "Payment details"
// @Param   Idempotency-Key header string false "Client-generated retry token"
// @Success 200 {object} dto.ProcessPaymentResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid argument"
// @Failure 401 {object} dto.ErrorResponse "Unauthenticated"
// @Failure 403 {object} dto.ErrorResponse "Not the payer"
// @Failure 404 {object} dto.ErrorResponse "Payer or recipient not found"
// @Failure 412 {object} dto.ErrorResponse "Insufficient balance"
// @Failure 500 {object} dto.ErrorResponse "Internal error"
// @Security BearerAuth
// @Router /payments [post]
func (h *paymentHandler) processPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader(idempotencyHeader)
	}

	callerID, _ := middleware.GetUserIDFromContext(c)
	logger = logger.With(slog.String("payment_method", req.PaymentMethod), slog.String("context", req.Context))

	res, err := h.paymentService.ProcessPayment(c.Request.Context(), req.ToDomain(callerID))
	if err != nil {
		respondError(c, logger, err, "Payment rejected")
		return
	}
	c.JSON(http.StatusOK, dto.ToProcessPaymentResponse(res))
}
