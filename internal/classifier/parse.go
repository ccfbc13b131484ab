package classifier

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"slack_topic_relay/internal/model"
	"slack_topic_relay/internal/service/openai"

	"github.com/go-playground/validator/v10"
)

// discard reasons, also used as metric labels
const (
	reasonUnknownTool       = "unknown_tool"
	reasonInvalidJSON       = "invalid_json"
	reasonMissingArgument   = "missing_argument"
	reasonChannelNotAllowed = "channel_not_allowed"
)

type sendDirectMessageArgs struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type postToChannelArgs struct {
	ChannelName string `json:"channel_name" validate:"required"`
	Message     string `json:"message" validate:"required"`
}

// discardError explains why a tool call produced no action
type discardError struct {
	reason string
	tool   string
	err    error
}

func (e *discardError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("discarded %s call: %s", e.tool, e.reason)
	}
	return fmt.Sprintf("discarded %s call: %s: %v", e.tool, e.reason, e.err)
}

func (e *discardError) Unwrap() error { return e.err }

type parser struct {
	validate      *validator.Validate
	alertChannels []string
}

func newParser(alertChannels []string) *parser {
	return &parser{
		validate:      validator.New(),
		alertChannels: alertChannels,
	}
}

// parse turns one raw tool call into an action or explains why it was discarded
func (p *parser) parse(call openai.ToolCall) (model.Action, error) {
	switch model.ActionKind(call.Name) {
	case model.ActionSendDirectMessage:
		var args sendDirectMessageArgs
		if err := p.decode(call, &args); err != nil {
			return nil, err
		}
		return model.SendDirectMessage{UserID: args.UserID, Message: args.Message}, nil

	case model.ActionPostToChannel:
		var args postToChannelArgs
		if err := p.decode(call, &args); err != nil {
			return nil, err
		}
		channel := strings.TrimPrefix(args.ChannelName, "#")
		if !slices.Contains(p.alertChannels, channel) {
			return nil, &discardError{reason: reasonChannelNotAllowed, tool: call.Name, err: fmt.Errorf("channel %q", channel)}
		}
		return model.PostToChannel{ChannelName: channel, Message: args.Message}, nil

	default:
		return nil, &discardError{reason: reasonUnknownTool, tool: call.Name}
	}
}

func (p *parser) decode(call openai.ToolCall, args any) error {
	if err := json.Unmarshal([]byte(call.Arguments), args); err != nil {
		return &discardError{reason: reasonInvalidJSON, tool: call.Name, err: err}
	}
	if err := p.validate.Struct(args); err != nil {
		return &discardError{reason: reasonMissingArgument, tool: call.Name, err: err}
	}
	return nil
}

// ActionParser validates tool arguments coming from outside a classification,
// such as an MCP tool call, with the same rules the classifier applies.
type ActionParser struct {
	p *parser
}

func NewActionParser(alertChannels []string) *ActionParser {
	return &ActionParser{p: newParser(alertChannels)}
}

// Parse turns the named tool and its JSON arguments into an action
func (a *ActionParser) Parse(toolName, arguments string) (model.Action, error) {
	return a.p.parse(openai.ToolCall{Name: toolName, Arguments: arguments})
}
