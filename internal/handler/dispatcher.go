package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"slack_topic_relay/internal/logger"
	"slack_topic_relay/internal/model"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"
)

// Deduplicator gates events that were already handled
type Deduplicator interface {
	SeenOrRecord(eventID string) bool
}

// Classifier turns message text into actions
type Classifier interface {
	Classify(ctx context.Context, text, userID string) ([]model.Action, error)
}

// ActionExecutor performs one action
type ActionExecutor interface {
	Execute(ctx context.Context, action model.Action) error
}

// Outcome describes how far a webhook call went through the pipeline
type Outcome string

const (
	OutcomeChallenge      Outcome = "challenge"
	OutcomeMalformed      Outcome = "malformed"
	OutcomeUnsupported    Outcome = "unsupported"
	OutcomeSelfOrigin     Outcome = "self_origin"
	OutcomeOutOfScope     Outcome = "out_of_scope"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeClassifyFailed Outcome = "classify_failed"
	OutcomeNoAction       Outcome = "no_action"
	OutcomeProcessed      Outcome = "processed"
)

// Result is what the HTTP layer needs to answer the webhook
type Result struct {
	Outcome   Outcome
	Challenge string // set for OutcomeChallenge
	Actions   int    // actions attempted
	Failed    int    // actions that failed
}

// Dispatcher runs one webhook payload through parse, filter, dedup, classify and execute.
// It is safe for concurrent use; the dedup window is the only shared state.
type Dispatcher struct {
	dedup      Deduplicator
	classifier Classifier
	executor   ActionExecutor
	// watched channel ids; nil means every channel
	channels map[string]struct{}
}

func NewDispatcher(dedup Deduplicator, classifier Classifier, executor ActionExecutor, watchChannelIDs []string) *Dispatcher {
	d := &Dispatcher{
		dedup:      dedup,
		classifier: classifier,
		executor:   executor,
	}
	if len(watchChannelIDs) > 0 {
		d.channels = make(map[string]struct{}, len(watchChannelIDs))
		for _, id := range watchChannelIDs {
			d.channels[id] = struct{}{}
		}
	}
	return d
}

// Dispatch never fails: every problem is logged and reflected in the outcome only
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) Result {
	result := d.dispatch(ctx, body)
	eventsTotal.WithLabelValues(string(result.Outcome)).Inc()
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, body []byte) Result {
	log := logger.GetLogger()

	// Parse the Slack event
	eventsAPIEvent, err := slackevents.ParseEvent(
		json.RawMessage(body),
		slackevents.OptionNoVerifyToken(),
	)
	if err != nil {
		log.Warn("failed to parse slack event", zap.Error(err))
		return Result{Outcome: OutcomeMalformed}
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		challenge, ok := eventsAPIEvent.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok || challenge.Challenge == "" {
			log.Warn("url verification without challenge")
			return Result{Outcome: OutcomeMalformed}
		}
		log.Debug("responding to challenge")
		return Result{Outcome: OutcomeChallenge, Challenge: challenge.Challenge}

	case slackevents.CallbackEvent:
		// handled below

	default:
		log.Warn("unsupported envelope type", zap.String("type", eventsAPIEvent.Type))
		return Result{Outcome: OutcomeUnsupported}
	}

	ev, ok := eventsAPIEvent.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok {
		log.Debug("unsupported event type", zap.String("event_type", fmt.Sprintf("%T", eventsAPIEvent.InnerEvent.Data)))
		return Result{Outcome: OutcomeUnsupported}
	}

	inbound, outcome := d.filterMessageEvent(ev)
	if outcome != "" {
		return Result{Outcome: outcome}
	}

	return d.process(ctx, inbound)
}

// process runs dedup, classification and execution for a normalized event
func (d *Dispatcher) process(ctx context.Context, ev model.InboundEvent) Result {
	log := logger.ForEvent(ev.EventID, ev.ChannelID, ev.UserID)

	if d.dedup.SeenOrRecord(ev.EventID) {
		log.Info("duplicate event skipped")
		return Result{Outcome: OutcomeDuplicate}
	}

	// a slow classification only delays this event's acknowledgment
	ctx = context.WithoutCancel(ctx)

	actions, err := d.classifier.Classify(ctx, ev.Text, ev.UserID)
	if err != nil {
		log.Error("classification failed, treating as no action", zap.Error(err))
		return Result{Outcome: OutcomeClassifyFailed}
	}
	if len(actions) == 0 {
		log.Debug("no action for message")
		return Result{Outcome: OutcomeNoAction}
	}

	result := Result{Outcome: OutcomeProcessed, Actions: len(actions)}
	// in the order the model returned them; a failure does not stop the rest
	for _, action := range actions {
		if err := d.executor.Execute(ctx, action); err != nil {
			result.Failed++
			log.Error("action failed", zap.String("action", action.String()), zap.Error(err))
			continue
		}
		log.Info("action executed", zap.String("action", action.String()))
	}
	return result
}
