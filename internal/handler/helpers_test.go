package handler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"slack_topic_relay/internal/model"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	mu      sync.Mutex
	actions []model.Action
	err     error
	calls   int
	texts   []string
}

func (s *stubClassifier) Classify(_ context.Context, text, _ string) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.texts = append(s.texts, text)
	return s.actions, s.err
}

func (s *stubClassifier) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingExecutor struct {
	mu       sync.Mutex
	fail     map[model.Action]error
	executed []model.Action
}

func (r *recordingExecutor) Execute(_ context.Context, action model.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[action]; err != nil {
		return err
	}
	r.executed = append(r.executed, action)
	return nil
}

func (r *recordingExecutor) Executed() []model.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Action(nil), r.executed...)
}

type messageEvent struct {
	Type    string `json:"type"`
	SubType string `json:"subtype,omitempty"`
	User    string `json:"user,omitempty"`
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
	TS      string `json:"ts,omitempty"`
	EventTS string `json:"event_ts,omitempty"`
	BotID   string `json:"bot_id,omitempty"`
}

func callbackPayload(t *testing.T, ev messageEvent) []byte {
	t.Helper()
	if ev.Type == "" {
		ev.Type = "message"
	}
	body, err := json.Marshal(map[string]any{
		"token":      "verification-token",
		"team_id":    "T1",
		"api_app_id": "A1",
		"type":       "event_callback",
		"event_id":   "Ev" + ev.TS,
		"event_time": 1712345678,
		"event":      ev,
	})
	require.NoError(t, err)
	return body
}

func paydayMessage(ts string) messageEvent {
	return messageEvent{
		User:    "U1",
		Channel: "C1",
		Text:    "when do we get paid",
		TS:      ts,
		EventTS: ts,
	}
}

type postedMessage struct {
	ChannelID string
	Text      string
}

// fakeSlack backs a real executor in end-to-end tests
type fakeSlack struct {
	mu       sync.Mutex
	users    map[string]bool
	channels []slack.Channel
	posted   []postedMessage
}

func (f *fakeSlack) GetUserInfoContext(_ context.Context, user string) (*slack.User, error) {
	if !f.users[user] {
		return nil, slack.SlackErrorResponse{Err: "user_not_found"}
	}
	return &slack.User{ID: user, Name: "user-" + user}, nil
}

func (f *fakeSlack) OpenConversationContext(_ context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
	return &slack.Channel{GroupConversation: slack.GroupConversation{
		Conversation: slack.Conversation{ID: "D-" + params.Users[0]},
	}}, false, false, nil
}

func (f *fakeSlack) GetConversationsContext(_ context.Context, _ *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	return f.channels, "", nil
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	_, values, err := slack.UnsafeApplyMsgOptions("", channelID, "", options...)
	if err != nil {
		return "", "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, postedMessage{ChannelID: channelID, Text: values.Get("text")})
	return channelID, "1712345678.999999", nil
}

func (f *fakeSlack) GetConversationHistoryContext(_ context.Context, _ *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	return &slack.GetConversationHistoryResponse{}, nil
}

func (f *fakeSlack) Posted() []postedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]postedMessage(nil), f.posted...)
}
