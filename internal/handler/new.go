package handler

import (
	"context"
	"fmt"

	"slack_topic_relay/internal/classifier"
	"slack_topic_relay/internal/config"
	"slack_topic_relay/internal/dedup"
	"slack_topic_relay/internal/executor"
	"slack_topic_relay/internal/logger"
	"slack_topic_relay/internal/service/openai"
	"slack_topic_relay/internal/storage"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// NewExecutor builds the Slack action executor from configuration
func NewExecutor(cfg *config.Config) *executor.Executor {
	retry := executor.DefaultRetryConfig()
	retry.MaxRetries = cfg.SlackMaxRetries

	return executor.New(slack.New(cfg.SlackBotToken), executor.Options{
		Retry:           retry,
		ChannelCacheTTL: cfg.ChannelCacheTTL,
	})
}

// NewFromConfig wires the dedup window, classifier and executor into a SlackHandler
func NewFromConfig(ctx context.Context, cfg *config.Config) (*SlackHandler, error) {
	instruction, err := loadInstruction(ctx, cfg)
	if err != nil {
		return nil, err
	}

	aiClient, err := openai.NewClient(cfg.AzureOpenAIEndpoint, cfg.AzureOpenAIKey, cfg.AzureOpenAIDeployment, cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	cls, err := classifier.New(aiClient, classifier.Options{
		Topic:         cfg.Topic,
		AlertChannels: cfg.AlertChannels,
		Instruction:   instruction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	window, err := dedup.NewWindow(cfg.DedupCapacity)
	if err != nil {
		return nil, err
	}

	exec := NewExecutor(cfg)

	watchIDs, err := resolveWatchChannels(ctx, exec, cfg.WatchChannels)
	if err != nil {
		return nil, err
	}

	logger.GetLogger().Info("slack handler ready",
		zap.String("topic", cfg.Topic),
		zap.Strings("watch_channels", cfg.WatchChannels),
		zap.Strings("alert_channels", cfg.AlertChannels),
		zap.Int("dedup_capacity", cfg.DedupCapacity))

	return NewSlackHandler(NewDispatcher(window, cls, exec, watchIDs)), nil
}

// loadInstruction returns the S3 instruction override, or "" when none is configured
func loadInstruction(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.PromptBucket == "" {
		return "", nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}

	store := storage.NewS3PromptStore(s3.NewFromConfig(awsCfg), cfg.PromptBucket, cfg.PromptKey)
	instruction, err := store.GetInstruction(ctx)
	if err != nil {
		return "", err
	}
	logger.GetLogger().Info("loaded classifier instruction from S3",
		zap.String("bucket", cfg.PromptBucket),
		zap.String("key", cfg.PromptKey))
	return instruction, nil
}

type channelResolver interface {
	ResolveChannel(ctx context.Context, name string) (string, error)
}

// resolveWatchChannels maps the configured channel names to ids once at startup
func resolveWatchChannels(ctx context.Context, resolver channelResolver, names []string) ([]string, error) {
	var ids []string
	for _, name := range names {
		id, err := resolver.ResolveChannel(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve watch channel %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
