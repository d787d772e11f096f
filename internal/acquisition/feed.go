package acquisition

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"arxivsync/internal/models"
)

// atomFeed mirrors the ArXiv Atom response shape: a feed of entries each
// carrying id/title/summary/author/published/updated/link/category.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	Updated    string        `xml:"updated"`
	Authors    []atomAuthor  `xml:"author"`
	Categories []atomCategory `xml:"category"`
	Links      []atomLink    `xml:"link"`
	Comment    string        `xml:"comment"`
	Journal    string        `xml:"journal_ref"`
	DOI        string        `xml:"doi"`
}

type atomAuthor struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"affiliation"`
}

type atomCategory struct {
	Term   string `xml:"term,attr"`
	Scheme string `xml:"scheme,attr"`
	Label  string `xml:"label,attr"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// parseFeed unmarshals the raw Atom XML body and converts every entry
// into a Paper, dropping malformed entries with an error the caller logs
// rather than aborting the whole page.
func parseFeed(data []byte) ([]models.Paper, []error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		return nil, []error{fmt.Errorf("parse atom feed: %w", err)}
	}

	papers := make([]models.Paper, 0, len(feed.Entries))
	var dropped []error
	for _, entry := range feed.Entries {
		paper, err := convertEntry(entry)
		if err != nil {
			dropped = append(dropped, err)
			continue
		}
		papers = append(papers, *paper)
	}
	return papers, dropped
}

func convertEntry(entry atomEntry) (*models.Paper, error) {
	paperID := models.ArxivIDFromEntryURL(entry.ID)
	if paperID == "" {
		return nil, fmt.Errorf("entry with empty id: %q", entry.ID)
	}

	publishedAt, err := time.Parse(time.RFC3339, entry.Published)
	if err != nil {
		return nil, fmt.Errorf("paper %s: bad published timestamp %q: %w", paperID, entry.Published, err)
	}

	updatedAt := publishedAt
	if entry.Updated != "" {
		if parsed, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
			updatedAt = parsed
		}
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		authors = append(authors, a.Name)
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, c := range entry.Categories {
		categories = append(categories, c.Term)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("paper %s: no categories", paperID)
	}

	var pdfURL string
	for _, link := range entry.Links {
		if link.Type == "application/pdf" {
			pdfURL = link.Href
			break
		}
	}

	paper := &models.Paper{
		ID:              paperID,
		Title:           collapseWhitespace(entry.Title),
		Abstract:        collapseWhitespace(entry.Summary),
		Authors:         authors,
		Categories:      categories,
		PrimaryCategory: categories[0],
		PublishedAt:     publishedAt,
		UpdatedAt:       updatedAt,
		EntryURL:        entry.ID,
		PDFURL:          pdfURL,
		Comment:         entry.Comment,
		JournalRef:      entry.Journal,
		DOI:             entry.DOI,
	}

	if err := paper.Validate(); err != nil {
		return nil, err
	}
	return paper, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
