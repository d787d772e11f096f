package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"arxivsync/internal/cache"
	"github.com/stretchr/testify/assert"
)

type countingChatAPI struct {
	calls int
	chats []Chat
}

func (c *countingChatAPI) ListChats(_ context.Context) ([]Chat, error) {
	c.calls++
	return c.chats, nil
}

func (c *countingChatAPI) SendMessage(_ context.Context, _, _, _ string) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedChatAPI_SecondCallWithinTTLUsesCache(t *testing.T) {
	inner := &countingChatAPI{chats: []Chat{{ChatID: "c1", Name: "robotics"}}}
	cached := NewCachedChatAPI(inner, cache.NewMemoryStore(), discardLogger())

	first, err := cached.ListChats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, inner.chats, first)

	second, err := cached.ListChats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, inner.chats, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedChatAPI_EmptyCacheFallsThroughToInner(t *testing.T) {
	inner := &countingChatAPI{chats: []Chat{{ChatID: "c1", Name: "robotics"}, {ChatID: "c2", Name: "ml"}}}
	cached := NewCachedChatAPI(inner, cache.NewMemoryStore(), discardLogger())

	chats, err := cached.ListChats(context.Background())
	assert.NoError(t, err)
	assert.Len(t, chats, 2)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedChatAPI_SendMessagePassesThroughUncached(t *testing.T) {
	inner := &countingChatAPI{}
	cached := NewCachedChatAPI(inner, cache.NewMemoryStore(), discardLogger())

	err := cached.SendMessage(context.Background(), "c1", "text", "hello")
	assert.NoError(t, err)
}
