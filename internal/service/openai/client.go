package openai

import (
	"context"
	"errors"
	"fmt"

	"slack_topic_relay/internal/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"go.uber.org/zap"
)

// ErrNoChoices is returned when the service answers without any completion choice
var ErrNoChoices = errors.New("no choices returned from chat completion")

// ChatCompleter is the part of azopenai.Client used here
type ChatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

type Client struct {
	client         ChatCompleter
	deploymentName string
	temperature    *float32
}

func NewClient(endpoint, apiKey, deploymentName string, temperature float32) (*Client, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, err
	}

	return NewClientWithCompleter(client, deploymentName, temperature), nil
}

// NewClientWithCompleter builds a Client on top of an existing completer
func NewClientWithCompleter(completer ChatCompleter, deploymentName string, temperature float32) *Client {
	return &Client{
		client:         completer,
		deploymentName: deploymentName,
		temperature:    to.Ptr(temperature),
	}
}

type Tool struct {
	Name        string
	Description string
	Parameters  []byte // JSON schema of the arguments
}

// ToolCall is one function call chosen by the model.
// Arguments are kept raw so the caller decides how to validate them.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatResponse is the first choice of a completion
type ChatResponse struct {
	ToolCalls []ToolCall
}

// ChatWithTools sends one completion request offering tools and returns the calls the model chose
func (c *Client) ChatWithTools(ctx context.Context, messages []azopenai.ChatRequestMessageClassification, tools []Tool) (*ChatResponse, error) {
	var azureTools []azopenai.ChatCompletionsToolDefinitionClassification
	for _, tool := range tools {
		azureTools = append(azureTools, &azopenai.ChatCompletionsFunctionToolDefinition{
			Function: &azopenai.ChatCompletionsFunctionToolDefinitionFunction{
				Name:        to.Ptr(tool.Name),
				Description: to.Ptr(tool.Description),
				Parameters:  tool.Parameters,
			},
		})
	}

	logger.GetLogger().Debug("sending messages to AI", zap.Int("messages", len(messages)), zap.Int("tools", len(azureTools)))
	resp, err := c.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(c.deploymentName),
		Messages:       messages,
		N:              to.Ptr[int32](1),
		Temperature:    c.temperature,
		Tools:          azureTools,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrNoChoices
	}

	choice := resp.Choices[0]
	if choice.Message == nil {
		return nil, fmt.Errorf("chat completion choice has no message")
	}

	response := &ChatResponse{}
	// tool calls that were not function calls or lacked a name
	skipped := 0

	for _, call := range choice.Message.ToolCalls {
		switch v := call.(type) {
		case *azopenai.ChatCompletionsFunctionToolCall:
			if v.Function == nil || v.Function.Name == nil {
				logger.GetLogger().Warn("function tool call without a name")
				skipped++
				continue
			}
			toolCall := ToolCall{Name: *v.Function.Name}
			if v.ID != nil {
				toolCall.ID = *v.ID
			}
			if v.Function.Arguments != nil {
				toolCall.Arguments = *v.Function.Arguments
			}
			response.ToolCalls = append(response.ToolCalls, toolCall)
		default:
			logger.GetLogger().Error("unknown tool call", zap.String("type", fmt.Sprintf("%T", v)))
			skipped++
		}
	}

	logger.GetLogger().Debug("chat completion response",
		zap.Int("tool_calls", len(response.ToolCalls)),
		zap.Int("skipped", skipped))

	return response, nil
}
