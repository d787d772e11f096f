package models

import (
	"fmt"
	"strings"
	"time"
)

// Paper is the canonical record produced by the acquisition engine. It is
// created once, held in memory for the duration of one profile pipeline,
// and copied (format-converted) into the remote table by the sync engine.
// It is never mutated after construction.
type Paper struct {
	ID       string   `json:"paper_id" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Abstract string   `json:"abstract"`
	Authors  []string `json:"authors"`

	Categories      []string `json:"categories" validate:"required,min=1"`
	PrimaryCategory string   `json:"primary_category"`

	PublishedAt time.Time `json:"published_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at"`

	EntryURL string `json:"entry_url" validate:"required,url"`
	PDFURL   string `json:"pdf_url,omitempty"`

	Comment    string `json:"comment,omitempty"`
	JournalRef string `json:"journal_ref,omitempty"`
	DOI        string `json:"doi,omitempty"`
}

// Validate checks a Paper's invariants: non-empty id, non-empty
// categories, published_at <= updated_at.
func (p *Paper) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("paper: empty paper_id")
	}
	if len(p.Categories) == 0 {
		return fmt.Errorf("paper %s: no categories", p.ID)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.PublishedAt
	}
	if p.PublishedAt.After(p.UpdatedAt) {
		return fmt.Errorf("paper %s: published_at after updated_at", p.ID)
	}
	return nil
}

// CategoriesJoined returns the space-joined category list used as one of
// the four fields concatenated into the matcher's search text T.
func (p *Paper) CategoriesJoined() string {
	return strings.Join(p.Categories, " ")
}

// AuthorsJoined returns the space-joined author list, the fourth field
// concatenated into T.
func (p *Paper) AuthorsJoined() string {
	return strings.Join(p.Authors, " ")
}

// SearchText builds T: the lowercased concatenation of title, abstract,
// categories and authors that every matcher in the relevance engine scans.
func (p *Paper) SearchText() string {
	return strings.ToLower(strings.Join([]string{
		p.Title, p.Abstract, p.CategoriesJoined(), p.AuthorsJoined(),
	}, " "))
}

// ArxivIDFromEntryURL extracts the opaque paper id from the final path
// segment of an ArXiv entry URL, e.g. "http://arxiv.org/abs/2401.01234v2"
// -> "2401.01234v2".
func ArxivIDFromEntryURL(entryURL string) string {
	parts := strings.Split(strings.TrimRight(entryURL, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
