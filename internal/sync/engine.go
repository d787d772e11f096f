// Package sync idempotently projects ranked papers into a profile's
// remote table, deduping against existing rows and batching inserts.
package sync

import (
	"context"
	"log/slog"

	"arxivsync/internal/feishu"
	"arxivsync/internal/models"
)

// defaultBatchSize bounds how many rows one batch_insert call carries.
const defaultBatchSize = 20

const paperIDField = "ArXiv ID"

// TableAPI is the subset of the remote table client the sync engine
// needs, narrowed so the engine can be exercised against a test double.
type TableAPI interface {
	FindTableByName(ctx context.Context, base, name string) (feishu.Table, bool, error)
	CreatePapersTable(ctx context.Context, base, name string, fields []feishu.FieldSchema) (feishu.Table, error)
	ListRecords(ctx context.Context, base, table string, pageSize int) ([]feishu.Record, error)
	BatchInsert(ctx context.Context, base, table string, rows []map[string]interface{}) ([]feishu.InsertResult, error)
}

// Engine syncs ranked papers for one or more profiles into their remote
// tables.
type Engine struct {
	tables TableAPI
	logger *slog.Logger
}

// NewEngine builds a sync engine bound to one remote table client.
func NewEngine(tables TableAPI, logger *slog.Logger) *Engine {
	return &Engine{tables: tables, logger: logger}
}

// ProfileInput is one profile's sync request: its display name (used to
// derive the table name), the base/bitable app token it syncs into, the
// ranked candidates to consider, and the minimum score a paper must clear
// to be written.
type ProfileInput struct {
	ProfileID    string
	DisplayName  string
	Base         string
	BatchSize    int
	SyncThreshold float64
	Candidates   []models.RankedPaper
}

// Sync finds or creates the profile's table, dedups against known paper
// ids, batch-inserts the new rows, and returns a SyncDelta summarizing
// what happened.
func (e *Engine) Sync(ctx context.Context, in ProfileInput) (models.SyncDelta, error) {
	tableName := in.DisplayName + "论文表"

	table, found, err := e.tables.FindTableByName(ctx, in.Base, tableName)
	if err != nil {
		return models.SyncDelta{}, err
	}
	if !found {
		table, err = e.tables.CreatePapersTable(ctx, in.Base, tableName, feishu.PapersTableSchema())
		if err != nil {
			return models.SyncDelta{}, err
		}
	}

	known, err := e.knownPaperIDs(ctx, in.Base, table.ID)
	if err != nil {
		return models.SyncDelta{}, err
	}

	var toInsert []models.RankedPaper
	for _, candidate := range in.Candidates {
		if known[candidate.Paper.ID] {
			continue
		}
		if candidate.Result.Score < in.SyncThreshold {
			continue
		}
		toInsert = append(toInsert, candidate)
	}

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var inserted []models.Paper
	for start := 0; start < len(toInsert); start += batchSize {
		end := start + batchSize
		if end > len(toInsert) {
			end = len(toInsert)
		}
		batch := toInsert[start:end]

		rows := make([]map[string]interface{}, len(batch))
		for i, c := range batch {
			rows[i] = feishu.FormatRow(c.Paper, c.Result.MatchedInterest, nil, c.Result.Score, in.DisplayName)
		}

		results, err := e.tables.BatchInsert(ctx, in.Base, table.ID, rows)
		if err != nil {
			e.logger.Warn("sync: batch insert failed, continuing with next batch",
				slog.String("profile_id", in.ProfileID), slog.String("error", err.Error()))
			continue
		}
		for i, r := range results {
			if r.Skipped || r.Err != nil {
				e.logger.Warn("sync: row skipped in batch", slog.String("paper_id", batch[i].Paper.ID))
				continue
			}
			inserted = append(inserted, batch[i].Paper)
		}
	}

	return models.SyncDelta{
		ProfileID:     in.ProfileID,
		TableID:       table.ID,
		TableName:     table.Name,
		NewCount:      len(inserted),
		TotalCount:    len(known) + len(inserted),
		NewlyInserted: inserted,
	}, nil
}

// knownPaperIDs loads every existing row and projects the paper id field
// into a set.
func (e *Engine) knownPaperIDs(ctx context.Context, base, tableID string) (map[string]bool, error) {
	records, err := e.tables.ListRecords(ctx, base, tableID, 0)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(records))
	for _, rec := range records {
		raw, ok := rec.Fields[paperIDField]
		if !ok {
			continue
		}
		if id, ok := paperIDFromField(raw); ok {
			known[id] = true
		}
	}
	return known, nil
}

func paperIDFromField(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case map[string]interface{}:
		if text, ok := v["text"].(string); ok {
			return text, true
		}
	}
	return "", false
}

// SyncAll runs every profile's sync in sequence, with per-profile
// notifications suppressed, and accumulates the deltas for a single
// aggregate notification emitted by the caller.
func (e *Engine) SyncAll(ctx context.Context, inputs []ProfileInput) ([]models.SyncDelta, error) {
	deltas := make([]models.SyncDelta, 0, len(inputs))
	for _, in := range inputs {
		delta, err := e.Sync(ctx, in)
		if err != nil {
			e.logger.Warn("sync: profile sync failed", slog.String("profile_id", in.ProfileID), slog.String("error", err.Error()))
			continue
		}
		deltas = append(deltas, delta)
	}
	return deltas, nil
}
