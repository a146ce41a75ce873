package handlers

import (
	"net/http"

	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/dto"
	"github.com/enkamba/enkamba_payments/internal/middleware"
	"github.com/gin-gonic/gin"
)

type resolverHandler struct {
	resolver portssvc.ResolverSvc
}

// registerResolverRoutes registers the recipient lookup used before confirming a payment.
func registerResolverRoutes(rg *gin.RouterGroup, resolver portssvc.ResolverSvc) {
	h := &resolverHandler{resolver: resolver}
	rg.GET("/recipients/resolve", h.resolveRecipient)
}

// resolveRecipient godoc
// @Summary Look up a recipient
// @Description Resolves an id, email, account number, card number or phone number. Only the account id and display name are returned.
// @Tags recipients
// @Produce  json
// @Param   identifier query string true "Recipient identifier"
// @Success 200 {object} dto.ResolveRecipientResponse
// @Failure 400 {object} dto.ErrorResponse "Missing identifier"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Security BearerAuth
// @Router /recipients/resolve [get]
func (h *resolverHandler) resolveRecipient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	res, err := h.resolver.Resolve(c.Request.Context(), c.Query("identifier"))
	if err != nil {
		respondError(c, logger, err, "Failed to resolve recipient")
		return
	}
	c.JSON(http.StatusOK, dto.ToResolveRecipientResponse(res))
}
