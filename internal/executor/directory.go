package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/slack-go/slack"
)

const (
	channelPageSize  = 200
	channelCacheSize = 10000
)

var channelTypes = []string{"public_channel", "private_channel"}

// channelDirectory resolves channel names to ids by listing conversations.
// With a positive TTL, names seen during a listing are remembered until they expire.
type channelDirectory struct {
	api   SlackAPI
	call  func(ctx context.Context, fn func() error) error
	cache *expirable.LRU[string, string]
}

func newChannelDirectory(api SlackAPI, call func(ctx context.Context, fn func() error) error, ttl time.Duration) *channelDirectory {
	d := &channelDirectory{api: api, call: call}
	if ttl > 0 {
		d.cache = expirable.NewLRU[string, string](channelCacheSize, nil, ttl)
	}
	return d
}

// Resolve returns the id of the channel whose name matches exactly
func (d *channelDirectory) Resolve(ctx context.Context, name string) (string, error) {
	if d.cache != nil {
		if id, ok := d.cache.Get(name); ok {
			return id, nil
		}
	}

	params := &slack.GetConversationsParameters{
		Types:           channelTypes,
		ExcludeArchived: true,
		Limit:           channelPageSize,
	}
	for {
		var (
			channels   []slack.Channel
			nextCursor string
		)
		err := d.call(ctx, func() error {
			var err error
			channels, nextCursor, err = d.api.GetConversationsContext(ctx, params)
			return err
		})
		if err != nil {
			return "", fmt.Errorf("failed to list channels: %w", err)
		}

		// the whole page goes into the cache, not just the channels before a match
		var found string
		for _, ch := range channels {
			if d.cache != nil && ch.Name != "" {
				d.cache.Add(ch.Name, ch.ID)
			}
			if found == "" && ch.Name == name {
				found = ch.ID
			}
		}
		if found != "" {
			return found, nil
		}

		if nextCursor == "" {
			break
		}
		params.Cursor = nextCursor
	}

	return "", fmt.Errorf("%w: %s", ErrChannelNotFound, name)
}
