package relevance

import (
	"regexp"
	"strings"

	"arxivsync/internal/models"
)

var semanticTerms = []string{
	"neural", "learning", "model", "algorithm", "method", "approach",
	"framework", "system", "network", "optimization", "training",
	"inference", "prediction", "classification", "regression",
}

var noveltyTerms = []string{
	"novel", "new", "first", "introduce", "propose", "present", "innovative",
	"breakthrough", "pioneer", "original", "unprecedented", "state-of-the-art",
	"sota", "outperform", "improve", "enhance", "advance", "superior", "better than",
}

var citationTerms = []string{
	"benchmark", "dataset", "survey", "review", "framework", "open source",
	"code available", "reproducible", "evaluation", "comparison", "analysis",
	"comprehensive", "extensive",
}

var highImpactCategories = map[string]bool{
	"cs.AI": true, "cs.LG": true, "cs.CV": true, "cs.CL": true, "cs.RO": true,
}

// ScoreWeights controls how the four advanced boosts combine with the
// base score.
type ScoreWeights struct {
	Base     float64
	Semantic float64
	Author   float64
	Novelty  float64
	Citation float64
}

// DefaultScoreWeights is the baseline weighting used when a profile
// enables advanced scoring without overriding it.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Base: 1.0, Semantic: 0.3, Author: 0.2, Novelty: 0.4, Citation: 0.3}
}

// ScoreAdvanced runs the base scorer then layers the four orthogonal
// boosts (semantic, author, novelty, citation potential) as a weighted
// sum. Skipped entirely if the base result was excluded.
func ScoreAdvanced(paper models.Paper, interest []string, exclude []string, tierWeights []models.Tier, weights ScoreWeights) models.RelevanceResult {
	base := Score(paper, interest, exclude, tierWeights)
	if base.Excluded {
		return base
	}

	combined := strings.ToLower(paper.Title + " " + paper.Abstract)
	breakdown := &models.ScoreBreakdown{
		Base:     base.Score,
		Semantic: semanticBoost(combined, interest),
		Author:   authorBoost(len(paper.Authors)),
		Novelty:  noveltyBoost(combined, strings.ToLower(paper.Title)),
		Citation: citationBoost(combined, paper.Categories, len(paper.Abstract)),
	}

	final := breakdown.Base*weights.Base +
		breakdown.Semantic*weights.Semantic +
		breakdown.Author*weights.Author +
		breakdown.Novelty*weights.Novelty +
		breakdown.Citation*weights.Citation

	return models.RelevanceResult{
		Score:           final,
		MatchedInterest: base.MatchedInterest,
		Breakdown:       breakdown,
	}
}

func semanticBoost(text string, interest []string) float64 {
	count := countOccurrences(text, semanticTerms)
	boost := clip(float64(count)*0.1, 0, 1.0)

	sentences := splitSentences(text)
	cooccur := 0
	for _, sentence := range sentences {
		hasInterest := false
		for _, kw := range interest {
			if strings.Contains(sentence, strings.ToLower(kw)) {
				hasInterest = true
				break
			}
		}
		if !hasInterest {
			continue
		}
		cooccur += countOccurrences(sentence, semanticTerms)
	}
	return boost + clip(float64(cooccur)*0.05, 0, 0.5)
}

func authorBoost(n int) float64 {
	switch {
	case n >= 2 && n <= 6:
		return 0.2
	case n == 1:
		return 0.1
	default:
		return 0
	}
}

func noveltyBoost(combined, title string) float64 {
	bodyCount := countOccurrences(combined, noveltyTerms)
	titleCount := countOccurrences(title, noveltyTerms)
	return clip(float64(bodyCount)*0.1+float64(titleCount)*0.2, 0, 1.0)
}

func citationBoost(combined string, categories []string, abstractLen int) float64 {
	score := float64(countOccurrences(combined, citationTerms)) * 0.15
	for _, cat := range categories {
		if highImpactCategories[cat] {
			score += 0.2
			break
		}
	}
	score += clip(float64(abstractLen)/1000, 0, 0.3)
	return clip(score, 0, 1.0)
}

func countOccurrences(text string, terms []string) int {
	count := 0
	for _, term := range terms {
		count += strings.Count(text, term)
	}
	return count
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var sentenceSplitter = regexp.MustCompile(`[.!?]+`)

func splitSentences(text string) []string {
	return sentenceSplitter.Split(text, -1)
}
