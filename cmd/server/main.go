package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/brisdel/langflow-api/internal/api"
	"github.com/brisdel/langflow-api/internal/config"
	"github.com/brisdel/langflow-api/internal/logger"
	"github.com/brisdel/langflow-api/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zlog.Sync() }()

	if !cfg.Flow.HasToken() {
		zlog.Warn("APPLICATION_TOKEN is not set; /query will fail until it is configured")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(zlog))

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
	}))

	api.RegisterRoutes(router, cfg, zlog)

	zlog.Info("starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("provider", cfg.Flow.Provider),
		zap.Bool("has_token", cfg.Flow.HasToken()),
	)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
