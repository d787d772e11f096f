package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"arxivsync/internal/cache"
)

// chatListCacheKey is a single fixed key: the bot belongs to one fixed
// set of chats per deployment, not one per caller.
const chatListCacheKey = "feishu:chat_list"

// chatListCacheTTL matches the lazy 5-minute refresh the chat roster
// tolerates; a bot being added to or removed from a chat takes effect on
// the next expiry, not immediately.
const chatListCacheTTL = 5 * time.Minute

// cachedChatAPI wraps a ChatAPI with a TTL read-through cache in front of
// ListChats, so a broadcast to many profiles in one run doesn't re-fetch
// the chat roster once per profile.
type cachedChatAPI struct {
	inner  ChatAPI
	store  cache.Store
	logger *slog.Logger
}

// NewCachedChatAPI wraps inner with a TTL cache for ListChats. SendMessage
// is passed straight through uncached.
func NewCachedChatAPI(inner ChatAPI, store cache.Store, logger *slog.Logger) ChatAPI {
	return &cachedChatAPI{inner: inner, store: store, logger: logger}
}

func (c *cachedChatAPI) ListChats(ctx context.Context) ([]Chat, error) {
	if raw, ok, err := c.store.Get(ctx, chatListCacheKey); err == nil && ok {
		var chats []Chat
		if err := json.Unmarshal(raw, &chats); err == nil {
			return chats, nil
		}
	}

	chats, err := c.inner.ListChats(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(chats); err == nil {
		if err := c.store.Put(ctx, chatListCacheKey, payload, chatListCacheTTL); err != nil {
			c.logger.Warn("notify: failed to cache chat list", slog.String("error", err.Error()))
		}
	}
	return chats, nil
}

func (c *cachedChatAPI) SendMessage(ctx context.Context, chatID, msgType, content string) error {
	return c.inner.SendMessage(ctx, chatID, msgType, content)
}
