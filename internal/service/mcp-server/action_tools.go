package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"slack_topic_relay/internal/classifier"
	"slack_topic_relay/internal/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const readChannelTool = "read_channel"

type actionTools struct {
	exec          ActionExecutor
	parser        *classifier.ActionParser
	alertChannels []string
}

// registerActionTools registers the same action menu the classifier offers the model
func registerActionTools(s *server.MCPServer, tools *actionTools) {
	for _, tool := range classifier.ActionTools(tools.alertChannels) {
		s.AddTool(tool, tools.handle)
	}
}

// registerReadTool lets an operator check what the relay posted to the alert channels
func registerReadTool(s *server.MCPServer, tools *actionTools) {
	if len(tools.alertChannels) == 0 {
		return
	}
	readTool := mcp.NewTool(readChannelTool,
		mcp.WithDescription(fmt.Sprintf("Read the latest messages of a Slack channel. Allowed channels: %s",
			strings.Join(tools.alertChannels, ", "))),
		mcp.WithString("channel_name",
			mcp.Required(),
			mcp.Description("Name of the channel, without the leading #"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return"),
		),
	)
	s.AddTool(readTool, tools.handleRead)
}

func (t *actionTools) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name
	arguments, err := json.Marshal(request.GetArguments())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments: %v", err)
	}

	action, err := t.parser.Parse(name, string(arguments))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.exec.Execute(ctx, action); err != nil {
		logger.GetLogger().Error("mcp action failed", zap.String("action", action.String()), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s done", action)), nil
}

func (t *actionTools) handleRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	channel, _ := args["channel_name"].(string)
	channel = strings.TrimPrefix(channel, "#")
	if channel == "" {
		return mcp.NewToolResultError("channel_name is required"), nil
	}
	if !slices.Contains(t.alertChannels, channel) {
		return mcp.NewToolResultError(fmt.Sprintf("channel %q is not allowed", channel)), nil
	}

	limit := 0
	if v, ok := args["limit"].(float64); ok {
		limit = int(v)
	}

	messages, err := t.exec.ReadChannel(ctx, channel, limit)
	if err != nil {
		logger.GetLogger().Error("mcp read failed", zap.String("channel", channel), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	// convert result to json string
	jsonResult, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %v", err)
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}
