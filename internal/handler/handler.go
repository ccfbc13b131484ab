package handler

import (
	"net/http"

	"slack_topic_relay/internal/logger"
	"slack_topic_relay/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SlackHandler serves the Slack Events API webhook
type SlackHandler struct {
	dispatcher *Dispatcher
}

func NewSlackHandler(dispatcher *Dispatcher) *SlackHandler {
	return &SlackHandler{dispatcher: dispatcher}
}

// HandleRequest acknowledges every delivery with 200 so Slack only retries on its own schedule.
// The single exception is the url_verification echo.
func (h *SlackHandler) HandleRequest(c *gin.Context) {
	// Read request body
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		logger.GetLogger().Warn("empty request body", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}

	result := h.dispatcher.Dispatch(c.Request.Context(), body)
	if result.Outcome == OutcomeChallenge {
		c.JSON(http.StatusOK, model.ChallengeResponse{Challenge: result.Challenge})
		return
	}

	c.Status(http.StatusOK)
}

// HandleDebug writes a marker line to the log
func (h *SlackHandler) HandleDebug(c *gin.Context) {
	logger.GetLogger().Debug("debug endpoint hit")
	c.String(http.StatusOK, "Debug log printed to console.")
}

// NewRouter wires the webhook, debug, health and metrics routes
func NewRouter(h *SlackHandler, signingSecret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/debug", h.HandleDebug)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	slackGroup := r.Group("/slack", VerifySlackSignature(signingSecret), HandleSlackRetry())
	slackGroup.POST("/events", h.HandleRequest)

	return r
}
