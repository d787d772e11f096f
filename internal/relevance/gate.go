package relevance

import (
	"strings"

	"arxivsync/internal/models"
	"arxivsync/internal/relevance/fuzzy"
	"arxivsync/internal/relevance/keywords"
)

// minFuzzyWordLen is the shortest token considered in the similarity-ratio
// cascade; shorter words produce too many false positives.
const minFuzzyWordLen = 3

// CheckRequired implements the AND-of-OR required-keyword gate. clauses may
// be single keywords or "A OR B OR C" alternatives; all clauses must match
// for the paper to pass. matched carries every individual keyword that
// matched across every clause, not just the first per clause.
func CheckRequired(paper models.Paper, clauses []string, fuzzyEnabled bool, threshold float64) (bool, []string) {
	if len(clauses) == 0 {
		return true, nil
	}

	text := fullText(paper)
	var matched []string

	for _, clause := range clauses {
		parts := splitOrClause(clause)
		var clauseMatches []string
		for _, part := range parts {
			if singleMatch(part, text, fuzzyEnabled, threshold) {
				clauseMatches = append(clauseMatches, part)
			}
		}
		if len(clauseMatches) == 0 {
			return false, nil
		}
		matched = append(matched, clauseMatches...)
	}
	return true, matched
}

func fullText(paper models.Paper) string {
	return strings.ToLower(strings.Join([]string{
		paper.Title,
		paper.Abstract,
		paper.CategoriesJoined(),
		paper.AuthorsJoined(),
	}, " "))
}

func splitOrClause(clause string) []string {
	lower := strings.ToLower(clause)
	if !strings.Contains(lower, " or ") {
		return []string{strings.TrimSpace(clause)}
	}

	idx := strings.Index(lower, " or ")
	var parts []string
	rest := clause
	for idx >= 0 {
		parts = append(parts, strings.TrimSpace(rest[:idx]))
		rest = rest[idx+4:]
		lowerRest := strings.ToLower(rest)
		idx = strings.Index(lowerRest, " or ")
	}
	parts = append(parts, strings.TrimSpace(rest))
	return parts
}

func singleMatch(keyword, text string, fuzzyEnabled bool, threshold float64) bool {
	lower := strings.ToLower(keyword)
	if strings.Contains(text, lower) {
		return true
	}
	if !fuzzyEnabled {
		return false
	}

	for _, variant := range keywords.Variants(keyword) {
		if strings.Contains(text, strings.ToLower(variant)) {
			return true
		}
	}

	words := tokenize(text)
	keywordWords := tokenize(keyword)
	windowSize := len(keywordWords)
	if windowSize == 0 {
		windowSize = 1
	}

	for i := 0; i+windowSize <= len(words); i++ {
		candidate := strings.Join(words[i:i+windowSize], " ")
		if windowSize == 1 && len(candidate) < minFuzzyWordLen {
			continue
		}
		if fuzzy.Ratio(candidate, lower) >= threshold {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.Fields(s)
}
