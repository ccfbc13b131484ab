package main

import (
	"log"
	"os"

	"slack_topic_relay/internal/config"
	"slack_topic_relay/internal/handler"
	"slack_topic_relay/internal/logger"
	mcpserver "slack_topic_relay/internal/service/mcp-server"

	"go.uber.org/zap"
)

func main() {
	os.Setenv("MCP_GO_LOG_LEVEL", "debug")

	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// stdout carries the MCP protocol, so logs go to stderr
	if err := logger.InitWithOutput(cfg.LogLevel, "stderr"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Create new MCP server
	server := mcpserver.NewServer(handler.NewExecutor(cfg), cfg.AlertChannels)

	logger.GetLogger().Info("starting slack topic relay MCP server")
	if err := mcpserver.Serve(server); err != nil {
		logger.GetLogger().Fatal("server error", zap.Error(err))
	}
}
