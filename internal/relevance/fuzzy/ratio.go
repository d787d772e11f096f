// Package fuzzy backs the Damerau-Levenshtein-like similarity ratio the
// relevance engine uses for fuzzy keyword and exclude-term matching.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Ratio returns a similarity score in [0, 1]: 1.0 for an exact match
// (including an exact substring hit, which short-circuits the scorer
// before this is ever called), decreasing with edit distance relative to
// the longer of the two strings.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// BestTokenRatio slides a window of windowSize tokens across words and
// returns the highest ratio against target, used both for single-word
// keyword matching (windowSize=1) and for matching multi-word keywords
// against a sliding window of tokens of the same length.
func BestTokenRatio(words []string, target string, windowSize int) float64 {
	if windowSize <= 0 || windowSize > len(words) {
		return 0
	}

	best := 0.0
	for i := 0; i+windowSize <= len(words); i++ {
		candidate := strings.Join(words[i:i+windowSize], " ")
		if r := Ratio(candidate, target); r > best {
			best = r
		}
	}
	return best
}
