package executor

import (
	"context"
	"time"

	"slack_topic_relay/internal/logger"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"go.uber.org/zap"
)

// RetryConfig bounds retries of transient Slack failures
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig makes a single attempt
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 0,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

func normalizeRetryConfig(cfg RetryConfig) RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return cfg
}

// newRetryPolicy retries only errors classified as transient; resolution
// errors and other API errors are returned after the first attempt.
func newRetryPolicy(cfg RetryConfig) retrypolicy.RetryPolicy[any] {
	cfg = normalizeRetryConfig(cfg)
	return retrypolicy.NewBuilder[any]().
		HandleIf(func(_ any, err error) bool {
			return IsTransient(err)
		}).
		WithBackoff(cfg.BaseDelay, cfg.MaxDelay).
		WithMaxRetries(cfg.MaxRetries).
		WithJitterFactor(0.1).
		ReturnLastFailure().
		OnRetry(func(event failsafe.ExecutionEvent[any]) {
			slackRetriesTotal.Inc()
			logger.GetLogger().Warn("retrying slack call", zap.Error(event.LastError()))
		}).
		Build()
}

// call runs one Slack API operation under the retry policy
func (e *Executor) call(ctx context.Context, fn func() error) error {
	return failsafe.With(e.retryPolicy).WithContext(ctx).Run(fn)
}
