package handlers

import (
	"log/slog"

	"github.com/enkamba/enkamba_payments/cmd/docs"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/middleware"
	"github.com/enkamba/enkamba_payments/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {
	r.GET("/health", getHealth)
	r.GET("/", getHome)

	if err := setupAPIV1Routes(r, cfg, services); err != nil {
		return err
	}
	setupInternalRoutes(r, cfg, services)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the caller-facing /api/v1 group.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) error {
	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	// Auth runs first so the limiter keys on the verified caller.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer), middleware.RateLimit(rateLimiter))

	registerPaymentRoutes(v1, service.Payment)
	registerWithdrawalRoutes(v1, service.Withdrawal)
	registerWalletRoutes(v1, service.Wallet, cfg.BaseCurrency)
	registerResolverRoutes(v1, service.Resolver)
	return nil
}

// setupInternalRoutes configures the routes called by the scheduler clock and the payout channel.
func setupInternalRoutes(r *gin.Engine, cfg *config.Config, service *portssvc.ServiceContainer) {
	if cfg.JobsAPIKey == "" {
		slog.Warn("JOBS_API_KEY is empty, internal routes will reject every request")
	}
	internal := r.Group("/internal", middleware.JobsAPIKeyAuth(cfg.JobsAPIKey))

	registerJobRoutes(internal, service.Contributions, service.Archival)
	registerSettlementRoutes(internal, service.Withdrawal)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
