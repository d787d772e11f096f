package relevance

import (
	"regexp"
	"strings"
	"time"

	"arxivsync/internal/models"
	"arxivsync/internal/relevance/fuzzy"
	"arxivsync/internal/relevance/keywords"
)

// excludeFuzzyThreshold is fixed, independent of the required-gate
// threshold a profile may configure.
const excludeFuzzyThreshold = 0.9

// wildcardTerms short-circuit the scorer to a perfect match for every
// non-excluded paper.
var wildcardTerms = map[string]bool{
	"*": true, "all": true, ".*": true, "全部": true, "所有": true,
}

// Score implements the base relevance scorer: exclusion test, wildcard
// short-circuit, then the per-keyword scoring cascade weighted by
// position, tier, time decay, domain weight, and keyword co-occurrence.
func Score(paper models.Paper, interest []string, exclude []string, tierWeights []models.Tier) models.RelevanceResult {
	text := fullText(paper)

	if excluded, matched := testExclusion(exclude, text); excluded {
		return models.Excluding(matched)
	}

	if isWildcard(interest) {
		return models.RelevanceResult{Score: 1.0, MatchedInterest: []string{"*"}}
	}

	decay := timeDecay(paper.PublishedAt)
	domain := domainWeight(paper.Categories)
	expandedInterest := keywords.Expand(interest)
	cooc := cooccurrence(expandedInterest, text)

	titleWords := tokenize(strings.ToLower(paper.Title))
	abstractLower := strings.ToLower(paper.Abstract)

	var score float64
	var matched []string
	n := len(interest)

	for i, kw := range interest {
		baseWeight := float64(n - i)
		tier := float64(models.TierDefault)
		if i < len(tierWeights) {
			tier = float64(tierWeights[i])
		}

		contribution, hit := keywordContribution(kw, text, titleWords, abstractLower, paper.CategoriesJoined())
		if hit {
			matched = append(matched, kw)
			score += contribution * baseWeight * tier * decay * domain * cooc
		}
	}

	return models.RelevanceResult{Score: score, MatchedInterest: matched}
}

func testExclusion(exclude []string, text string) (bool, []string) {
	if len(exclude) == 0 {
		return false, nil
	}
	expanded := keywords.Expand(exclude)
	for _, term := range expanded {
		lower := strings.ToLower(term)
		if strings.Contains(text, lower) {
			return true, []string{term}
		}
		if fuzzy.BestTokenRatio(tokenize(text), lower, 1) >= excludeFuzzyThreshold {
			return true, []string{term + "(fuzzy)"}
		}
	}
	return false, nil
}

func isWildcard(interest []string) bool {
	if len(interest) == 0 {
		return false
	}
	for _, kw := range interest {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			return true
		}
		if wildcardTerms[strings.ToLower(trimmed)] {
			return true
		}
	}
	return false
}

func timeDecay(publishedAt time.Time) float64 {
	ageDays := time.Since(publishedAt).Hours() / 24
	if ageDays <= 0 {
		return 1.0
	}
	if ageDays >= 30 {
		return 0.7
	}
	return 1.0 - (ageDays/30)*0.3
}

func domainWeight(categories []string) float64 {
	max := 1.0
	for _, cat := range categories {
		if w, ok := keywords.DomainWeights[cat]; ok && w > max {
			max = w
		}
	}
	return max
}

func cooccurrence(expandedInterest []string, text string) float64 {
	n := 0
	for _, term := range expandedInterest {
		if strings.Contains(text, strings.ToLower(term)) {
			n++
		}
	}
	if n < 2 {
		return 1.0
	}
	return 1.0 + 0.2*float64(n-1)
}

// keywordContribution implements the step 1-6 cascade for a single
// keyword: regex prefix, substring, fuzzy, else synonym-expanded
// positional/fuzzy/category scoring.
func keywordContribution(kw, text string, titleWords []string, abstractLower, categoriesJoined string) (float64, bool) {
	lower := strings.ToLower(kw)

	if body, ok := regexBody(kw); ok {
		re, err := compileCaseInsensitive(body)
		if err == nil {
			if re.MatchString(text) {
				return 1.0, true
			}
			return 0, false
		}
		lower = strings.ToLower(body)
	}

	if strings.Contains(text, lower) {
		return 1.0, true
	}

	if r := fuzzy.BestTokenRatio(tokenize(text), lower, 1); r >= 0.8 {
		return r, true
	}

	keywordScore := 0.0
	for _, variant := range keywords.Expand([]string{kw}) {
		keywordScore += variantScore(variant, titleWords, abstractLower, categoriesJoined)
	}
	if keywordScore > 0 {
		return keywordScore, true
	}
	return 0, false
}

func variantScore(variant string, titleWords []string, abstractLower, categoriesJoined string) float64 {
	v := strings.ToLower(variant)
	var total float64

	if pos := firstWordIndexContaining(titleWords, v); pos >= 0 {
		frac := float64(pos) / float64(len(titleWords))
		factor := 1.0 - frac*0.5
		if factor < 0.5 {
			factor = 0.5
		}
		total += 3.0 * factor
	}

	if idx := strings.Index(abstractLower, v); idx >= 0 {
		if len(abstractLower) == 0 || float64(idx)/float64(len(abstractLower)) <= 0.3 {
			total += 2.5
		} else {
			total += 1.5
		}
	}

	total += fuzzy.BestTokenRatio(titleWords, v, 1) * 2.0
	total += fuzzy.BestTokenRatio(tokenize(abstractLower), v, 1) * 1.0

	if re, err := regexp.Compile(`\b` + regexp.QuoteMeta(v) + `\b`); err == nil {
		total += float64(len(re.FindAllStringIndex(categoriesJoined, -1))) * 1.5
	}

	return total
}

func firstWordIndexContaining(words []string, v string) int {
	for i, w := range words {
		if strings.Contains(w, v) {
			return i
		}
	}
	return -1
}

func regexBody(kw string) (string, bool) {
	if strings.HasPrefix(kw, "regex:") {
		return kw[len("regex:"):], true
	}
	if strings.HasPrefix(kw, "re:") {
		return kw[len("re:"):], true
	}
	return "", false
}

func compileCaseInsensitive(body string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + body)
}
