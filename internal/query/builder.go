// Package query composes the opaque ArXiv search_query string consumed by
// the acquisition engine, following the fluent-builder shape of the
// upstream provider's ArxivQueryBuilder but generalized to the category
// set / date window / free-text contract the relevance pipeline needs.
package query

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	universalMatch   = "all:*"
	defaultFromStamp = "19910801"
	dateLayout       = "20060102"
)

// Window is an inclusive submission-date range. A zero From defaults to
// 1991-08-01 (ArXiv's founding month); a zero To defaults to "now".
type Window struct {
	From time.Time
	To   time.Time
}

// Builder composes one query string from a free-text term, a set of
// category tags, and an optional date window. Categories join with OR;
// everything else joins with AND at the top level.
type Builder struct {
	Text       string
	Categories []string
	Window     *Window

	logger *slog.Logger
}

// New returns a Builder. A nil logger disables the category-intersection
// warning below.
func New(logger *slog.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build renders the composed query string. With no text, categories, or
// window set, it renders as the universal match token.
func (b *Builder) Build() string {
	var parts []string

	if strings.TrimSpace(b.Text) != "" {
		parts = append(parts, fmt.Sprintf("all:%s", b.Text))
	}

	if cat := b.categoryTerm(); cat != "" {
		parts = append(parts, cat)
	}

	if b.Window != nil {
		parts = append(parts, b.dateTerm(*b.Window))
	}

	if len(parts) == 0 {
		return universalMatch
	}
	return strings.Join(parts, " AND ")
}

// categoryTerm OR-joins the category set. ArXiv's query grammar has no
// intersection operator, so more than one category is treated as a union
// and a warning is logged rather than silently narrowing to one.
func (b *Builder) categoryTerm() string {
	if len(b.Categories) == 0 {
		return ""
	}
	if len(b.Categories) > 1 && b.logger != nil {
		b.logger.Warn("arxiv query: category intersection is not supported upstream, using union",
			slog.Any("categories", b.Categories))
	}
	terms := make([]string, len(b.Categories))
	for i, c := range b.Categories {
		terms[i] = fmt.Sprintf("cat:%s", c)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return "(" + strings.Join(terms, " OR ") + ")"
}

func (b *Builder) dateTerm(w Window) string {
	from := defaultFromStamp
	if !w.From.IsZero() {
		from = w.From.Format(dateLayout)
	}
	to := "now"
	if !w.To.IsZero() {
		to = w.To.Format(dateLayout)
	}

	fromBound := from + "0000"
	toBound := to
	if toBound != "now" {
		toBound = toBound + "2359"
	}
	return fmt.Sprintf("submittedDate:[%s TO %s]", fromBound, toBound)
}
