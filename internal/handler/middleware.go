package handler

import (
	"bytes"
	"io"
	"net/http"

	"slack_topic_relay/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// HandleSlackRetry records Slack redeliveries. The request still goes through
// the dispatcher, whose dedup window drops events that were already handled.
func HandleSlackRetry() gin.HandlerFunc {
	return func(c *gin.Context) {
		retryNum := c.GetHeader("X-Slack-Retry-Num")
		retryReason := c.GetHeader("X-Slack-Retry-Reason")

		if retryNum != "" {
			logger.GetLogger().Info("slack retry request",
				zap.String("retry_num", retryNum),
				zap.String("retry_reason", retryReason))
			slackRetryDeliveriesTotal.WithLabelValues(retryReason).Inc()
		}
		c.Next()
	}
}

// VerifySlackSignature rejects requests whose X-Slack-Signature does not match the signing secret
func VerifySlackSignature(signingSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.GetLogger().Error("failed to read request body", zap.Error(err))
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		// reattach request body for the handler
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		verifier, err := slack.NewSecretsVerifier(c.Request.Header, signingSecret)
		if err != nil {
			logger.GetLogger().Warn("invalid slack signature headers", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if _, err := verifier.Write(body); err != nil {
			logger.GetLogger().Error("failed to hash request body", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if err := verifier.Ensure(); err != nil {
			logger.GetLogger().Warn("slack signature mismatch", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
