package handler

import (
	"strings"

	"slack_topic_relay/internal/logger"
	"slack_topic_relay/internal/model"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"
)

// subtypes that never carry a new human message
var ignoredSubtypes = map[string]bool{
	"bot_message":     true,
	"message_changed": true,
	"message_deleted": true,
	"channel_join":    true,
	"channel_leave":   true,
}

// filterMessageEvent normalizes a message event, or returns the outcome explaining why it is dropped
func (d *Dispatcher) filterMessageEvent(ev *slackevents.MessageEvent) (model.InboundEvent, Outcome) {
	// Ignore messages from bots to prevent loops
	if ev.BotID != "" || ev.SubType == "bot_message" {
		return model.InboundEvent{}, OutcomeSelfOrigin
	}
	if ignoredSubtypes[ev.SubType] {
		return model.InboundEvent{}, OutcomeUnsupported
	}

	inbound, ok := model.NewInboundEvent(ev)
	if !ok {
		logger.GetLogger().Warn("message event missing required fields",
			zap.String("user", ev.User),
			zap.String("channel", ev.Channel),
			zap.String("ts", ev.TimeStamp))
		return model.InboundEvent{}, OutcomeMalformed
	}

	if d.channels != nil {
		if _, ok := d.channels[inbound.ChannelID]; !ok {
			return model.InboundEvent{}, OutcomeOutOfScope
		}
	}

	if strings.TrimSpace(inbound.Text) == "" {
		return model.InboundEvent{}, OutcomeNoAction
	}

	return inbound, ""
}
