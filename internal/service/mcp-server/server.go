package mcpserver

import (
	"context"

	"slack_topic_relay/internal/classifier"
	"slack_topic_relay/internal/model"

	"github.com/mark3labs/mcp-go/server"
)

// ActionExecutor performs Slack actions and reads channel history
type ActionExecutor interface {
	Execute(ctx context.Context, action model.Action) error
	ReadChannel(ctx context.Context, channelName string, limit int) ([]model.ChannelMessage, error)
}

// NewServer creates an MCP server exposing the relay's Slack actions as tools
func NewServer(exec ActionExecutor, alertChannels []string) *server.MCPServer {
	// Create MCP server
	s := server.NewMCPServer(
		"slack topic relay",
		"1.0.0",
	)

	tools := &actionTools{
		exec:          exec,
		parser:        classifier.NewActionParser(alertChannels),
		alertChannels: alertChannels,
	}
	registerActionTools(s, tools)
	registerReadTool(s, tools)

	return s
}

// Serve starts the MCP server
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
