package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brisdel/langflow-api/internal/config"
	"github.com/brisdel/langflow-api/internal/domain"
	"github.com/brisdel/langflow-api/internal/flow"
	"github.com/brisdel/langflow-api/internal/metrics"
	"github.com/brisdel/langflow-api/internal/middleware"
)

func RegisterRoutes(router *gin.Engine, cfg *config.Config, log *zap.Logger) {
	provider := flow.NewProviderFromConfig(cfg.Flow, log)
	limiter := newQueryRateLimiter(cfg.Server.RateLimit)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, domain.HealthResponse{
			Status:  "ok",
			Message: "API is alive",
			Environment: domain.HealthEnvironment{
				HasToken: cfg.Flow.HasToken(),
			},
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/query", queryHandler(cfg, provider, log, limiter))
}

func queryHandler(cfg *config.Config, provider flow.Provider, log *zap.Logger, limiter queryRequestLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforceQueryRateLimit(c, limiter) {
			return
		}

		started := time.Now()

		var req domain.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeRelayError(c, started, flow.NewValidationError("invalid query payload"))
			return
		}

		payload, partNumber, err := flow.BuildPayload(req.Message, cfg.Flow)
		if err != nil {
			writeRelayError(c, started, err)
			return
		}

		raw, err := provider.Run(c.Request.Context(), payload)
		if err != nil {
			relayErr := flow.AsRelayError(err)
			log.Warn("query failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("provider", provider.Name()),
				zap.String("error_code", string(relayErr.Code)),
				zap.Int64("duration_ms", time.Since(started).Milliseconds()),
			)
			writeRelayError(c, started, relayErr)
			return
		}

		result := flow.Unwrap(raw)
		result.PartNumber = partNumber

		metrics.RelayRequests.WithLabelValues("success", "none").Inc()
		metrics.RelayDuration.WithLabelValues("success").Observe(time.Since(started).Seconds())

		c.JSON(http.StatusOK, result)
	}
}

func writeRelayError(c *gin.Context, started time.Time, err error) {
	relayErr := flow.AsRelayError(err)
	metrics.RelayRequests.WithLabelValues("error", string(relayErr.Code)).Inc()
	metrics.RelayDuration.WithLabelValues("error").Observe(time.Since(started).Seconds())
	writeError(c, relayErr.Status, strings.ToLower(string(relayErr.Code)), relayErr.Message)
}

func writeError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, domain.APIErrorResponse{
		Error: domain.APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
		},
	})
}
