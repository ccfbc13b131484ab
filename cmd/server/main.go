package main

import (
	"context"
	"log"

	"slack_topic_relay/internal/config"
	"slack_topic_relay/internal/handler"
	"slack_topic_relay/internal/logger"

	"go.uber.org/zap"
)

func main() {
	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	slackHandler, err := handler.NewFromConfig(context.Background(), cfg)
	if err != nil {
		logger.GetLogger().Fatal("failed to initialize slack handler", zap.Error(err))
	}

	r := handler.NewRouter(slackHandler, cfg.SlackSigningSecret)

	logger.GetLogger().Info("starting server", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.GetLogger().Fatal("server error", zap.Error(err))
	}
}
