// Package notify composes and broadcasts a digest of one run's sync
// deltas to every chat the bot belongs to.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arxivsync/internal/models"
)

// minChatSpacing is the minimum delay enforced between consecutive chat
// sends during a broadcast.
const minChatSpacing = 500 * time.Millisecond

// ChatAPI is the subset of the remote client the notifier needs to
// enumerate chats and send messages.
type ChatAPI interface {
	ListChats(ctx context.Context) ([]Chat, error)
	SendMessage(ctx context.Context, chatID, msgType, content string) error
}

// Chat describes one chat the bot belongs to.
type Chat struct {
	ChatID string
	Name   string
}

// ProfileLink maps a profile id to the base/table pair used to build its
// deep link, supplied by the caller so the notifier never calls back
// into the sync engine.
type ProfileLink struct {
	Base    string
	TableID string
}

// Notifier aggregates per-profile sync deltas into one digest and
// broadcasts it.
type Notifier struct {
	chats              ChatAPI
	logger             *slog.Logger
	minPapersThreshold int
}

// NewNotifier builds a notifier with the given minimum-papers gate
// (default 1 when zero is passed).
func NewNotifier(chats ChatAPI, minPapersThreshold int, logger *slog.Logger) *Notifier {
	if minPapersThreshold <= 0 {
		minPapersThreshold = 1
	}
	return &Notifier{chats: chats, logger: logger, minPapersThreshold: minPapersThreshold}
}

// Notify composes one digest from deltas and broadcasts it to every
// chat the bot belongs to. Returns true iff at least one chat accepted
// the message. Silently skips when the aggregate new-paper count is
// below the configured threshold.
func (n *Notifier) Notify(ctx context.Context, deltas []models.SyncDelta, links map[string]ProfileLink) (bool, error) {
	total := 0
	for _, d := range deltas {
		total += d.NewCount
	}
	if total < n.minPapersThreshold {
		n.logger.Debug("notify: below threshold, skipping", slog.Int("total", total))
		return false, nil
	}

	plain := composePlain(deltas, links)
	rich := composeRich(deltas, links)

	chats, err := n.chats.ListChats(ctx)
	if err != nil {
		return false, err
	}

	accepted := false
	for i, chat := range chats {
		if i > 0 {
			select {
			case <-ctx.Done():
				return accepted, ctx.Err()
			case <-time.After(minChatSpacing):
			}
		}

		content := rich
		msgType := "interactive"
		if err := n.chats.SendMessage(ctx, chat.ChatID, msgType, content); err != nil {
			n.logger.Warn("notify: send failed for chat, falling back to plain text",
				slog.String("chat_id", chat.ChatID), slog.String("error", err.Error()))
			if err := n.chats.SendMessage(ctx, chat.ChatID, "text", plain); err != nil {
				n.logger.Warn("notify: plain-text fallback also failed",
					slog.String("chat_id", chat.ChatID), slog.String("error", err.Error()))
				continue
			}
		}
		accepted = true
	}
	return accepted, nil
}

func composePlain(deltas []models.SyncDelta, links map[string]ProfileLink) string {
	var b strings.Builder
	total := 0
	for _, d := range deltas {
		total += d.NewCount
	}
	fmt.Fprintf(&b, "%d new papers across %d profiles\n", total, len(deltas))

	for _, d := range deltas {
		if d.NewCount == 0 {
			continue
		}
		link := links[d.ProfileID]
		fmt.Fprintf(&b, "\n%s: %d new / %d total\n%s\n", d.TableName, d.NewCount, d.TotalCount, deepLink(link))
		if top, ok := d.TopPaper(scoresOf(d.NewlyInserted)); ok {
			fmt.Fprintf(&b, "top: %s\n", top.Title)
		}
	}
	return b.String()
}

func composeRich(deltas []models.SyncDelta, links map[string]ProfileLink) string {
	var b strings.Builder
	b.WriteString(`{"elements":[`)
	first := true
	for _, d := range deltas {
		if d.NewCount == 0 {
			continue
		}
		if !first {
			b.WriteString(",")
		}
		first = false
		link := links[d.ProfileID]
		fmt.Fprintf(&b, `{"tag":"div","text":{"content":"%s: %d new / %d total — %s"}}`,
			d.TableName, d.NewCount, d.TotalCount, deepLink(link))
	}
	b.WriteString(`]}`)
	return b.String()
}

func deepLink(link ProfileLink) string {
	if link.Base == "" || link.TableID == "" {
		return ""
	}
	return fmt.Sprintf("https://feishu.cn/base/%s?table=%s", link.Base, link.TableID)
}

func scoresOf(papers []models.Paper) map[string]float64 {
	scores := make(map[string]float64, len(papers))
	for _, p := range papers {
		scores[p.ID] = 0
	}
	return scores
}
