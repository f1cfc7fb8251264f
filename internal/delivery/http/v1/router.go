package v1

import (
	"time"

	"gradhire-backend/config"
	"gradhire-backend/internal/delivery/http/middleware"
	"gradhire-backend/internal/domain"
	"gradhire-backend/internal/metrics"
	"gradhire-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	JobUC          domain.JobUsecase
	ApplicationUC  domain.ApplicationUsecase
	MessagingUC    domain.MessagingUsecase
	NotificationUC domain.NotificationUsecase
	VerificationUC domain.VerificationUsecase
	HealthUC       usecase.HealthUsecase
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler())

	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")

	// Health Check
	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.RateLimitMiddleware(middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	protected.Use(middleware.CSRFMiddleware(cfg.IsProduction()))
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		NewJobHandler(protected, deps.JobUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewMessageHandler(protected, deps.MessagingUC,
			middleware.RateLimitMiddleware(middleware.MessageRateLimitConfig(cfg.RateLimitMessageLimit, window)))
		NewNotificationHandler(protected, deps.NotificationUC)
		NewVerificationHandler(protected, deps.VerificationUC)
	}

	return r
}
