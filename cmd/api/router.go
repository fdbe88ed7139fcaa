package main

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/archlint/core/cmd/api/middleware"
	"github.com/archlint/core/internal/config"
	"github.com/archlint/core/internal/handlers"
	"github.com/archlint/core/internal/metrics"
	"github.com/archlint/core/internal/ratelimit"
	"github.com/archlint/core/internal/service"
)

func newRouter(cfg *config.Config, svc *service.Service, m *metrics.Metrics, limiter *ratelimit.Limiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
			logger.Error("panic in handler",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.Any("panic", recovered))
			c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.ErrorResponse{
				Type:    handlers.TypeSystemError,
				Message: "Internal Engine Failure",
			})
		}),
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.Metrics(m),
		middleware.Cors(cfg.CORSAllowedOrigin),
	)

	r.GET("/health", handlers.HealthHandler(svc.EngineVersion()))
	r.GET("/health/live", handlers.LiveHandler)
	r.GET("/health/ready", handlers.ReadyHandler(svc))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api",
		middleware.RateLimit(limiter, logger),
		middleware.BodyLimit(cfg.MaxBodyBytes),
	)
	api.POST("/validate", handlers.ValidateHandler(svc))
	api.POST("/compile", handlers.CompileHandler(svc))
	api.GET("/validate/stats", handlers.StatsHandler(svc))

	return r
}
