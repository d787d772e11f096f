package feishu

import (
	"fmt"

	"arxivsync/internal/models"
)

// Feishu bitable field types (see the downstream API's field-type enum).
const (
	fieldTypeText       = 1
	fieldTypeNumber     = 2
	fieldTypeDate       = 5
	fieldTypeCreatedAt  = 1001
	fieldTypeURL        = 15
	fieldTypeMultiSelect = 4
)

const abstractMaxLen = 2000
const maxTagItems = 10

// PapersTableSchema is the field schema passed to CreatePapersTable.
func PapersTableSchema() []FieldSchema {
	return []FieldSchema{
		{FieldName: "ArXiv ID", Type: fieldTypeURL},
		{FieldName: "Title", Type: fieldTypeText},
		{FieldName: "Authors", Type: fieldTypeMultiSelect},
		{FieldName: "Abstract", Type: fieldTypeText},
		{FieldName: "Categories", Type: fieldTypeMultiSelect},
		{FieldName: "Matched Keywords", Type: fieldTypeMultiSelect},
		{FieldName: "Required Matches", Type: fieldTypeMultiSelect},
		{FieldName: "Relevance Score", Type: fieldTypeNumber},
		{FieldName: "Research Area", Type: fieldTypeMultiSelect},
		{FieldName: "PDF Link", Type: fieldTypeURL},
		{FieldName: "Published Date", Type: fieldTypeDate},
		{FieldName: "Updated Date", Type: fieldTypeDate},
		{FieldName: "Sync Time", Type: fieldTypeCreatedAt},
	}
}

// FormatRow projects a Paper plus its scoring metadata into the row field
// map the table API expects, applying the per-field caps the schema
// names: authors/categories capped at 10 tags, abstract truncated to
// 2000 characters, dates as epoch milliseconds.
func FormatRow(paper models.Paper, matchedInterest, matchedRequired []string, score float64, researchArea string) map[string]interface{} {
	return map[string]interface{}{
		"ArXiv ID":         map[string]interface{}{"text": paper.ID, "link": paper.EntryURL},
		"Title":            paper.Title,
		"Authors":          capTags(paper.Authors, maxTagItems),
		"Abstract":         truncate(paper.Abstract, abstractMaxLen),
		"Categories":       capTags(paper.Categories, maxTagItems),
		"Matched Keywords": matchedInterest,
		"Required Matches": matchedRequired,
		"Relevance Score":  roundTo2(score),
		"Research Area":    []string{researchArea},
		"PDF Link":         map[string]interface{}{"text": "pdf", "link": paper.PDFURL},
		"Published Date":   paper.PublishedAt.UnixMilli(),
		"Updated Date":     paper.UpdatedAt.UnixMilli(),
	}
}

func capTags(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	return items[:max]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// DeepLink builds the table link the Notifier embeds in its digest.
func DeepLink(base, tableID string) string {
	return fmt.Sprintf("https://feishu.cn/base/%s?table=%s", base, tableID)
}
