package sync

import (
	"context"
	"fmt"
	"log/slog"
	"io"
	"testing"

	"arxivsync/internal/feishu"
	"arxivsync/internal/models"
	"github.com/stretchr/testify/assert"
)

type fakeTableAPI struct {
	table   feishu.Table
	exists  bool
	records []feishu.Record
}

func (f *fakeTableAPI) FindTableByName(_ context.Context, _, _ string) (feishu.Table, bool, error) {
	return f.table, f.exists, nil
}

func (f *fakeTableAPI) CreatePapersTable(_ context.Context, _, name string, _ []feishu.FieldSchema) (feishu.Table, error) {
	f.table = feishu.Table{ID: "tbl1", Name: name}
	f.exists = true
	return f.table, nil
}

func (f *fakeTableAPI) ListRecords(_ context.Context, _, _ string, _ int) ([]feishu.Record, error) {
	return f.records, nil
}

func (f *fakeTableAPI) BatchInsert(_ context.Context, _, _ string, rows []map[string]interface{}) ([]feishu.InsertResult, error) {
	results := make([]feishu.InsertResult, len(rows))
	for i, fields := range rows {
		id := fields["ArXiv ID"].(map[string]interface{})["text"].(string)
		f.records = append(f.records, feishu.Record{Fields: fields})
		results[i] = feishu.InsertResult{Record: feishu.Record{Fields: fields}}
		_ = id
	}
	return results, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rankedPaper(id string) models.RankedPaper {
	return models.RankedPaper{
		Paper: models.Paper{
			ID:          id,
			Title:       fmt.Sprintf("Paper %s", id),
			Categories:  []string{"cs.RO"},
			EntryURL:    "http://arxiv.org/abs/" + id,
		},
		Result: models.RelevanceResult{Score: 1.0},
	}
}

func TestSync_IsIdempotent(t *testing.T) {
	fake := &fakeTableAPI{}
	engine := NewEngine(fake, testLogger())

	candidates := []models.RankedPaper{rankedPaper("2401.00001"), rankedPaper("2401.00002"), rankedPaper("2401.00003")}
	in := ProfileInput{ProfileID: "p1", DisplayName: "robotics", Base: "base1", Candidates: candidates}

	first, err := engine.Sync(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, 3, first.NewCount)
	assert.Equal(t, 3, first.TotalCount)

	second, err := engine.Sync(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.NewCount)
	assert.Equal(t, 3, second.TotalCount)
}

func TestSync_TableNameReflectsLiveLookupNotLocalConstruction(t *testing.T) {
	// The table was renamed in Feishu after creation; FindTableByName
	// returns the table under its current, renamed display name. The
	// delta must report that live name, not DisplayName+"论文表".
	fake := &fakeTableAPI{
		table:  feishu.Table{ID: "tbl1", Name: "Robotics Papers (renamed)"},
		exists: true,
	}
	engine := NewEngine(fake, testLogger())

	delta, err := engine.Sync(context.Background(), ProfileInput{
		ProfileID: "p1", DisplayName: "robotics", Base: "base1",
		Candidates: []models.RankedPaper{rankedPaper("2401.00005")},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Robotics Papers (renamed)", delta.TableName)
}

func TestSync_DropsBelowThreshold(t *testing.T) {
	fake := &fakeTableAPI{}
	engine := NewEngine(fake, testLogger())

	low := rankedPaper("2401.00004")
	low.Result.Score = 0.1

	delta, err := engine.Sync(context.Background(), ProfileInput{
		ProfileID: "p1", DisplayName: "robotics", Base: "base1",
		SyncThreshold: 0.5, Candidates: []models.RankedPaper{low},
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, delta.NewCount)
}
