package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"slack_topic_relay/internal/model"
	"slack_topic_relay/internal/service/openai"

	"github.com/mark3labs/mcp-go/mcp"
)

// SendDirectMessageTool declares the direct message action offered to the model
func SendDirectMessageTool() mcp.Tool {
	return mcp.NewTool(string(model.ActionSendDirectMessage),
		mcp.WithDescription("Send a direct message to a Slack user"),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Slack user ID to message"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message content"),
		),
	)
}

// PostToChannelTool declares the channel post action. The description lists the
// channels the model is allowed to use.
func PostToChannelTool(channels []string) mcp.Tool {
	description := "Post a message to a Slack channel"
	if len(channels) > 0 {
		description = fmt.Sprintf("%s. Allowed channels: %s", description, strings.Join(channels, ", "))
	}
	return mcp.NewTool(string(model.ActionPostToChannel),
		mcp.WithDescription(description),
		mcp.WithString("channel_name",
			mcp.Required(),
			mcp.Description("Name of the channel, without the leading #"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message content"),
		),
	)
}

// ActionTools returns the action menu. The channel post is only offered when
// at least one channel is allowed.
func ActionTools(alertChannels []string) []mcp.Tool {
	tools := []mcp.Tool{SendDirectMessageTool()}
	if len(alertChannels) > 0 {
		tools = append(tools, PostToChannelTool(alertChannels))
	}
	return tools
}

// convertToolsToOpenAIFormat converts MCP tools to OpenAI tool format
func convertToolsToOpenAIFormat(tools []mcp.Tool) ([]openai.Tool, error) {
	var openAITools []openai.Tool
	for _, tool := range tools {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema of tool %s: %w", tool.Name, err)
		}
		openAITools = append(openAITools, openai.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schema,
		})
	}
	return openAITools, nil
}
