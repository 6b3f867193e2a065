package handlers

import (
	"github.com/divisando/divisando-backend/cmd/docs"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/middleware"
	"github.com/divisando/divisando-backend/internal/platform/config"
	"github.com/divisando/divisando-backend/internal/utils"
	"github.com/divisando/divisando-backend/pkg/database"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using
// interfaces. Health and swagger stay outside the API gates; everything under
// /api/v1 sits behind the API key, User-Agent and rate-limit checks.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	dbManager *database.Manager,
	ipLimiter *limiter.Limiter,
	analytics *utils.AnalyticsClient,
) {
	registerHealthRoutes(r, dbManager)

	gates := []gin.HandlerFunc{
		middleware.RequireAPIKey(cfg.APIKey),
		middleware.RequireKnownUserAgent(cfg.AllowedUserAgents),
		middleware.RateLimit(ipLimiter),
	}

	// Public API surface: auth flows and federated sign-in.
	public := r.Group("/api/v1", gates...)
	registerAuthRoutes(public, services)
	registerOAuthRoutes(public, cfg, services)

	// Access-token protected surface.
	authed := append(gates, middleware.AuthMiddleware(cfg.JWTSecret), middleware.Analytics(analytics))
	v1 := r.Group("/api/v1", authed...)
	registerUserRoutes(v1, services.User)
	registerExchangeRoutes(v1, services.Exchange)

	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes.
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
