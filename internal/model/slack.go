package model

import "github.com/slack-go/slack/slackevents"

// InboundEvent is a Slack message normalized for the dispatcher
type InboundEvent struct {
	EventID   string // event_ts, or ts when event_ts is absent; used as the dedup key
	UserID    string
	ChannelID string
	Text      string
}

// NewInboundEvent builds an InboundEvent from a parsed message event.
// It returns false when a required field is missing.
func NewInboundEvent(ev *slackevents.MessageEvent) (InboundEvent, bool) {
	eventID := ev.EventTimeStamp
	if eventID == "" {
		eventID = ev.TimeStamp
	}

	inbound := InboundEvent{
		EventID:   eventID,
		UserID:    ev.User,
		ChannelID: ev.Channel,
		Text:      ev.Text,
	}
	if inbound.EventID == "" || inbound.UserID == "" || inbound.ChannelID == "" {
		return InboundEvent{}, false
	}
	return inbound, true
}

// ChannelMessage is one message of a channel's history
type ChannelMessage struct {
	Timestamp string `json:"ts"`
	UserID    string `json:"user,omitempty"`
	Text      string `json:"text"`
}

// ChallengeResponse is the body echoed back for url_verification requests
type ChallengeResponse struct {
	Challenge string `json:"challenge"`
}
