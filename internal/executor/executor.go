// Package executor performs the Slack side effects chosen by the classifier.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slack_topic_relay/internal/logger"
	"slack_topic_relay/internal/model"

	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// SlackAPI is the subset of *slack.Client the executor needs
type SlackAPI interface {
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	OpenConversationContext(ctx context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
}

// Options configures an Executor
type Options struct {
	Retry           RetryConfig
	ChannelCacheTTL time.Duration
}

type Executor struct {
	api         SlackAPI
	retryPolicy retrypolicy.RetryPolicy[any]
	channels    *channelDirectory
}

func New(api SlackAPI, opts Options) *Executor {
	e := &Executor{
		api:         api,
		retryPolicy: newRetryPolicy(opts.Retry),
	}
	e.channels = newChannelDirectory(api, e.call, opts.ChannelCacheTTL)
	return e
}

// Execute runs one action. Failures are returned, never retried past the policy.
func (e *Executor) Execute(ctx context.Context, action model.Action) error {
	if action == nil {
		return errors.New("nil action")
	}

	var err error
	switch a := action.(type) {
	case model.SendDirectMessage:
		err = e.SendDirectMessage(ctx, a.UserID, a.Message)
	case model.PostToChannel:
		err = e.PostToChannel(ctx, a.ChannelName, a.Message)
	default:
		err = fmt.Errorf("unsupported action %T", action)
	}

	actionsTotal.WithLabelValues(string(action.Kind()), resultLabel(err)).Inc()
	return err
}

// SendDirectMessage opens (or resumes) the direct message channel with userID and posts message
func (e *Executor) SendDirectMessage(ctx context.Context, userID, message string) error {
	log := logger.GetLogger().With(zap.String("user_id", userID))
	log.Debug("trying to DM user")

	var user *slack.User
	err := e.call(ctx, func() error {
		var err error
		user, err = e.api.GetUserInfoContext(ctx, userID)
		return err
	})
	if err != nil {
		if isUnknownUser(err) {
			return fmt.Errorf("%w: %s: %v", ErrUserNotFound, userID, err)
		}
		return fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if user == nil || user.Deleted {
		return fmt.Errorf("%w: %s is deleted", ErrUserNotFound, userID)
	}
	log.Debug("found user", zap.String("name", user.Name))

	var channel *slack.Channel
	err = e.call(ctx, func() error {
		var err error
		channel, _, _, err = e.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
			Users:    []string{userID},
			ReturnIM: true,
		})
		return err
	})
	if err != nil {
		if isUnknownUser(err) {
			return fmt.Errorf("%w: %s: %v", ErrUserNotFound, userID, err)
		}
		return fmt.Errorf("failed to open conversation with %s: %w", userID, err)
	}
	if channel == nil || channel.ID == "" {
		return fmt.Errorf("%w: %s: conversations.open returned no channel", ErrUserNotFound, userID)
	}

	return e.post(ctx, channel.ID, message)
}

// PostToChannel resolves channelName to an id and posts message there
func (e *Executor) PostToChannel(ctx context.Context, channelName, message string) error {
	channelID, err := e.channels.Resolve(ctx, channelName)
	if err != nil {
		return err
	}
	return e.post(ctx, channelID, message)
}

// ResolveChannel returns the id of the public or private channel named name
func (e *Executor) ResolveChannel(ctx context.Context, name string) (string, error) {
	return e.channels.Resolve(ctx, name)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// ReadChannel returns up to limit of the latest messages in the channel named channelName, newest first
func (e *Executor) ReadChannel(ctx context.Context, channelName string, limit int) ([]model.ChannelMessage, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	channelID, err := e.channels.Resolve(ctx, channelName)
	if err != nil {
		return nil, err
	}

	var history *slack.GetConversationHistoryResponse
	err = e.call(ctx, func() error {
		var err error
		history, err = e.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Limit:     limit,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history of %s: %w", channelID, err)
	}

	messages := make([]model.ChannelMessage, 0, len(history.Messages))
	for _, msg := range history.Messages {
		messages = append(messages, model.ChannelMessage{
			Timestamp: msg.Timestamp,
			UserID:    msg.User,
			Text:      msg.Text,
		})
	}
	return messages, nil
}

func (e *Executor) post(ctx context.Context, channelID, message string) error {
	var ts string
	err := e.call(ctx, func() error {
		var err error
		_, ts, err = e.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(message, false))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to post message to %s: %w", channelID, err)
	}
	logger.GetLogger().Info("message posted", zap.String("channel_id", channelID), zap.String("ts", ts))
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "sent"
	case IsResolution(err):
		return "resolution_error"
	case IsTransient(err):
		return "transient_error"
	default:
		if code := slackErrorCode(err); code != "" {
			return "api_error"
		}
		return "error"
	}
}
