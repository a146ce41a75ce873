package handlers

import (
	"net/http"

	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/middleware"
	"github.com/gin-gonic/gin"
)

// jobsHandler exposes the batch engines to the external clock.
type jobsHandler struct {
	contributions portssvc.ContributionSchedulerSvc
	archival      portssvc.ArchivalSvc
}

func registerJobRoutes(rg *gin.RouterGroup, contributions portssvc.ContributionSchedulerSvc, archival portssvc.ArchivalSvc) {
	h := &jobsHandler{contributions: contributions, archival: archival}

	jobs := rg.Group("/jobs")
	{
		jobs.POST("/contributions", h.runContributions)
		jobs.POST("/archive", h.runArchival)
	}
}

// runContributions godoc
// @Summary Run scheduled savings contributions
// @Tags internal
// @Produce  json
// @Success 200 {object} domain.ContributionRunResult
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure 500 {object} dto.ErrorResponse "Goals could not be listed"
// @Security ApiKeyAuth
// @Router /internal/jobs/contributions [post]
func (h *jobsHandler) runContributions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	res, err := h.contributions.RunScheduledContributions(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Contribution run failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

// runArchival godoc
// @Summary Archive old transaction records
// @Tags internal
// @Produce  json
// @Success 200 {object} domain.ArchivalRunResult
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid API key"
// @Failure 500 {object} dto.ErrorResponse "Sweep aborted"
// @Security ApiKeyAuth
// @Router /internal/jobs/archive [post]
func (h *jobsHandler) runArchival(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	res, err := h.archival.RunArchivalSweep(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Archival sweep failed")
		return
	}
	c.JSON(http.StatusOK, res)
}
