// Package acquisition executes paginated, date-sliced, self-adaptive
// queries against the ArXiv Atom endpoint and dedups the merged result.
package acquisition

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"arxivsync/internal/models"
	"arxivsync/internal/query"
)

// Engine fetches papers from ArXiv: page-size auto-degradation within one
// date window, date-window batching across a wide range, and cross-window
// dedup by paper id.
type Engine struct {
	client *client
	cfg    Config
	logger *slog.Logger
}

// NewEngine builds an Engine bound to the given configuration.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		client: newClient(cfg, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// GetRecent fetches papers submitted in the last `days` days, newest-first.
func (e *Engine) GetRecent(ctx context.Context, days int, maxResults int, categories []string) ([]models.Paper, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	return e.GetRange(ctx, from, to, maxResults, categories)
}

// GetRange fetches papers submitted in [from, to], newest-first, applying
// date-window batching when the range exceeds MaxDaysPerBatch.
func (e *Engine) GetRange(ctx context.Context, from, to time.Time, maxResults int, categories []string) ([]models.Paper, error) {
	windows := splitWindow(from, to, e.cfg.MaxDaysPerBatch, e.cfg.BatchOverlapDays)

	seen := make(map[string]bool)
	var all []models.Paper

	for i, w := range windows {
		if i > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(e.cfg.MinBatchInterval):
			}
		}

		papers := e.fetchWindow(ctx, w, maxResults, categories)
		added := 0
		for _, p := range papers {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			all = append(all, p)
			added++
		}

		e.logger.Info("acquisition: sub-window complete",
			slog.Time("from", w.From), slog.Time("to", w.To),
			slog.Int("fetched", len(papers)), slog.Int("new", added))
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	return all, nil
}

// fetchWindow runs the page-size ladder for a single date window: the
// first size that yields at least one record is used to completion;
// sizes that hit EmptyPageStreakLimit empty pages before producing
// anything are abandoned for the next smaller size. A page-level fetch
// error ends the window early (non-fatal) and keeps whatever was
// accumulated so far.
func (e *Engine) fetchWindow(ctx context.Context, w query.Window, maxResults int, categories []string) []models.Paper {
	b := query.New(e.logger)
	b.Categories = categories
	b.Window = &w
	searchQuery := b.Build()

	for _, size := range e.cfg.PageSizes {
		papers, ok := e.attemptPageSize(ctx, searchQuery, size, maxResults)
		if ok {
			return papers
		}
		e.logger.Debug("acquisition: page size produced nothing, degrading",
			slog.Int("page_size", size))
	}
	return nil
}

// attemptPageSize paginates at a fixed page size until maxResults is
// reached, the upstream signals end-of-data with a short page, or the
// empty-page streak limit aborts the attempt. The bool return reports
// whether this size should be used to completion (true) or whether the
// caller should degrade to the next smaller size (false). A fetch error
// returns true so the window ends with what was accumulated.
func (e *Engine) attemptPageSize(ctx context.Context, searchQuery string, pageSize, maxResults int) ([]models.Paper, bool) {
	var papers []models.Paper
	start := 0
	emptyStreak := 0
	produced := false

	for {
		if maxResults > 0 && len(papers) >= maxResults {
			return papers, true
		}

		want := pageSize
		if maxResults > 0 {
			if remaining := maxResults - len(papers); remaining < want {
				want = remaining
			}
		}

		pagePapers, dropped, err := e.client.fetchPage(ctx, searchQuery, start, want)
		for _, d := range dropped {
			e.logger.Warn("acquisition: dropping malformed record", slog.String("error", d.Error()))
		}
		if err != nil {
			e.logger.Warn("acquisition: page fetch failed, skipping rest of window",
				slog.String("error", err.Error()))
			return papers, true
		}

		if len(pagePapers) == 0 {
			emptyStreak++
			if !produced {
				if emptyStreak >= e.cfg.EmptyPageStreakLimit {
					return papers, false
				}
				start += want
				continue
			}
			return papers, true
		}

		emptyStreak = 0
		produced = true
		papers = append(papers, pagePapers...)
		start += want

		if len(pagePapers) < want {
			return papers, true
		}
	}
}

// splitWindow divides [from, to] into consecutive inclusive-day
// sub-windows of at most maxDays days, each overlapping the previous by
// overlapDays.
func splitWindow(from, to time.Time, maxDays, overlapDays int) []query.Window {
	from = truncateToDay(from)
	to = truncateToDay(to)

	totalDays := int(to.Sub(from).Hours()/24) + 1
	if totalDays <= maxDays {
		return []query.Window{{From: from, To: to}}
	}

	var windows []query.Window
	cursor := from
	for {
		end := cursor.AddDate(0, 0, maxDays-1)
		if !end.Before(to) {
			end = to
		}
		windows = append(windows, query.Window{From: cursor, To: end})
		if !end.Before(to) {
			break
		}
		cursor = end.AddDate(0, 0, 1-overlapDays)
	}
	return windows
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
