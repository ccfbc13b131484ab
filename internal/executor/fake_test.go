package executor

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
)

type postedMessage struct {
	ChannelID string
	Text      string
}

// fakeSlack is an in-memory SlackAPI
type fakeSlack struct {
	mu sync.Mutex

	users        map[string]*slack.User
	channelPages [][]slack.Channel
	history      map[string][]slack.Message

	userInfoErrs []error // consumed one per call before succeeding
	openErr      error
	listErr      error
	postErrs     []error

	userInfoCalls int
	listCalls     int
	postCalls     int
	posted        []postedMessage
	historyLimits []int
}

func newFakeSlack() *fakeSlack {
	return &fakeSlack{users: map[string]*slack.User{}}
}

func (f *fakeSlack) addUser(id, name string) {
	f.users[id] = &slack.User{ID: id, Name: name}
}

func channel(id, name string) slack.Channel {
	return slack.Channel{GroupConversation: slack.GroupConversation{
		Conversation: slack.Conversation{ID: id},
		Name:         name,
	}}
}

func (f *fakeSlack) GetUserInfoContext(_ context.Context, user string) (*slack.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userInfoCalls++
	if len(f.userInfoErrs) > 0 {
		err := f.userInfoErrs[0]
		f.userInfoErrs = f.userInfoErrs[1:]
		return nil, err
	}
	u, ok := f.users[user]
	if !ok {
		return nil, slack.SlackErrorResponse{Err: "user_not_found"}
	}
	return u, nil
}

func (f *fakeSlack) OpenConversationContext(_ context.Context, params *slack.OpenConversationParameters) (*slack.Channel, bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, false, false, f.openErr
	}
	ch := channel("D-"+params.Users[0], "")
	return &ch, false, true, nil
}

func (f *fakeSlack) GetConversationsContext(_ context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, "", f.listErr
	}
	page := 0
	if params.Cursor != "" {
		page = int(params.Cursor[0] - '0')
	}
	if page >= len(f.channelPages) {
		return nil, "", nil
	}
	next := ""
	if page+1 < len(f.channelPages) {
		next = string(rune('0' + page + 1))
	}
	return f.channelPages[page], next, nil
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postCalls++
	if len(f.postErrs) > 0 {
		err := f.postErrs[0]
		f.postErrs = f.postErrs[1:]
		return "", "", err
	}
	_, values, err := slack.UnsafeApplyMsgOptions("", channelID, "", options...)
	if err != nil {
		return "", "", err
	}
	f.posted = append(f.posted, postedMessage{ChannelID: channelID, Text: values.Get("text")})
	return channelID, "1712345678.000100", nil
}

func (f *fakeSlack) GetConversationHistoryContext(_ context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyLimits = append(f.historyLimits, params.Limit)
	messages, ok := f.history[params.ChannelID]
	if !ok {
		return nil, slack.SlackErrorResponse{Err: "not_in_channel"}
	}
	if len(messages) > params.Limit {
		messages = messages[:params.Limit]
	}
	return &slack.GetConversationHistoryResponse{Messages: messages}, nil
}

func message(ts, user, text string) slack.Message {
	return slack.Message{Msg: slack.Msg{Timestamp: ts, User: user, Text: text}}
}
