// Package classifier asks a language model whether a Slack message is about the
// configured topic and turns the tool calls it makes into validated actions.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slack_topic_relay/internal/logger"
	"slack_topic_relay/internal/model"
	"slack_topic_relay/internal/service/openai"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"go.uber.org/zap"
)

// DefaultInstruction is the system message used when no override is configured
const DefaultInstruction = "You monitor Slack messages and act on relevant ones. " +
	"Only call a tool when the message clearly matches the topic you are given. " +
	"Never invent user IDs or channel names."

// ToolChatter sends one tool-enabled completion request
type ToolChatter interface {
	ChatWithTools(ctx context.Context, messages []azopenai.ChatRequestMessageClassification, tools []openai.Tool) (*openai.ChatResponse, error)
}

// Options configures a Classifier
type Options struct {
	Topic         string
	AlertChannels []string
	// Instruction replaces DefaultInstruction when set
	Instruction string
}

type Classifier struct {
	chat          ToolChatter
	tools         []openai.Tool
	parser        *parser
	topic         string
	instruction   string
	alertChannels []string
}

func New(chat ToolChatter, opts Options) (*Classifier, error) {
	if opts.Topic == "" {
		return nil, errors.New("classifier topic is required")
	}

	tools, err := convertToolsToOpenAIFormat(ActionTools(opts.AlertChannels))
	if err != nil {
		return nil, err
	}

	instruction := strings.TrimSpace(opts.Instruction)
	if instruction == "" {
		instruction = DefaultInstruction
	}

	return &Classifier{
		chat:          chat,
		tools:         tools,
		parser:        newParser(opts.AlertChannels),
		topic:         opts.Topic,
		instruction:   instruction,
		alertChannels: opts.AlertChannels,
	}, nil
}

// Classify returns the actions the model chose for a message, in the order it chose them.
// Malformed calls are dropped one by one. A failed request returns no actions and an error.
func (c *Classifier) Classify(ctx context.Context, text, userID string) ([]model.Action, error) {
	response, err := c.chat.ChatWithTools(ctx, c.createMessages(text, userID), c.tools)
	if err != nil {
		classifierCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to classify message: %w", err)
	}
	classifierCallsTotal.WithLabelValues("ok").Inc()

	var actions []model.Action
	for _, call := range response.ToolCalls {
		action, err := c.parser.parse(call)
		if err != nil {
			var discard *discardError
			if errors.As(err, &discard) {
				discardedToolCallsTotal.WithLabelValues(discard.reason).Inc()
			}
			logger.GetLogger().Warn("discarding tool call",
				zap.String("tool", call.Name),
				zap.String("tool_call_id", call.ID),
				zap.Error(err))
			continue
		}
		actions = append(actions, action)
	}

	return actions, nil
}

// createMessages creates the system instruction and the classification prompt
func (c *Classifier) createMessages(text, userID string) []azopenai.ChatRequestMessageClassification {
	return []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestSystemMessage{
			Content: azopenai.NewChatRequestSystemMessageContent(c.instruction),
		},
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(c.prompt(text, userID)),
		},
	}
}

func (c *Classifier) prompt(text, userID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a Slack assistant. If the message below is about %s:\n", c.topic)
	fmt.Fprintf(&b, "1. Call %s to send a direct message to the user %s. Send only the original message, not a response.\n",
		model.ActionSendDirectMessage, userID)
	if len(c.alertChannels) > 0 {
		fmt.Fprintf(&b, "2. Call %s to post the original message to the relevant channel among: %s.\n",
			model.ActionPostToChannel, strings.Join(c.alertChannels, ", "))
	}
	b.WriteString("If the message is not about that topic, do not call any tool.\n")
	fmt.Fprintf(&b, "Message: %q", text)
	return b.String()
}
