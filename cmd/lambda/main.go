package main

import (
	"context"
	"log"

	"slack_topic_relay/internal/config"
	"slack_topic_relay/internal/handler"
	"slack_topic_relay/internal/logger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var ginLambda *ginadapter.GinLambda

// handleRequest forwards API Gateway requests to the gin router.
// The dedup window lives as long as this container does.
func handleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
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

	gin.SetMode(gin.ReleaseMode)
	ginLambda = ginadapter.New(handler.NewRouter(slackHandler, cfg.SlackSigningSecret))

	lambda.Start(handleRequest)
}
