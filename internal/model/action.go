package model

import "fmt"

// ActionKind names a side effect the classifier may request.
// The values double as the tool names offered to the model.
type ActionKind string

const (
	ActionSendDirectMessage ActionKind = "send_slack_dm"
	ActionPostToChannel     ActionKind = "post_to_channel"
)

// Action is one validated side effect chosen by the classifier.
// The set of implementations is closed: SendDirectMessage and PostToChannel.
type Action interface {
	Kind() ActionKind
	String() string
	isAction()
}

// SendDirectMessage asks for a direct message to a Slack user
type SendDirectMessage struct {
	UserID  string
	Message string
}

func (SendDirectMessage) Kind() ActionKind { return ActionSendDirectMessage }

func (a SendDirectMessage) String() string {
	return fmt.Sprintf("%s(user=%s)", a.Kind(), a.UserID)
}

func (SendDirectMessage) isAction() {}

// PostToChannel asks for a message in a channel identified by name
type PostToChannel struct {
	ChannelName string
	Message     string
}

func (PostToChannel) Kind() ActionKind { return ActionPostToChannel }

func (a PostToChannel) String() string {
	return fmt.Sprintf("%s(channel=%s)", a.Kind(), a.ChannelName)
}

func (PostToChannel) isAction() {}
