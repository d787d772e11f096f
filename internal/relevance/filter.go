// Package relevance scores and ranks acquired papers against a profile's
// keyword interest, running the required gate, the base or advanced
// scorer, and the final sort.
package relevance

import (
	"sort"

	"arxivsync/internal/models"
)

// FilterOptions parameterizes one Filter-and-Rank pass.
type FilterOptions struct {
	Required                []string
	RequiredFuzzyMatch      bool
	RequiredSimilarityThreshold float64

	Interest    []string
	Exclude     []string
	TierWeights []models.Tier

	MinScore float64

	Advanced     bool
	ScoreWeights ScoreWeights
}

// FilterAndRank runs the required gate, then the scorer, over every
// candidate and returns survivors sorted by score descending (ties by
// published_at descending, then paper_id lexicographic), plus every
// dropped candidate and aggregate stats.
func FilterAndRank(papers []models.Paper, opts FilterOptions) ([]models.RankedPaper, []models.ExcludedPaper, models.FilterStats) {
	stats := models.FilterStats{Total: len(papers)}

	var ranked []models.RankedPaper
	var excluded []models.ExcludedPaper
	var scoreSum float64

	for _, paper := range papers {
		if len(opts.Required) > 0 {
			pass, _ := CheckRequired(paper, opts.Required, opts.RequiredFuzzyMatch, opts.RequiredSimilarityThreshold)
			if !pass {
				stats.RequiredFiltered++
				excluded = append(excluded, models.ExcludedPaper{Paper: paper, Reason: "required-missed"})
				continue
			}
		}

		if len(opts.Interest) == 0 && len(opts.Exclude) == 0 {
			ranked = append(ranked, models.RankedPaper{Paper: paper, Result: models.RelevanceResult{Score: 1.0}})
			scoreSum += 1.0
			continue
		}

		var result models.RelevanceResult
		if opts.Advanced {
			result = ScoreAdvanced(paper, opts.Interest, opts.Exclude, opts.TierWeights, opts.ScoreWeights)
		} else {
			result = Score(paper, opts.Interest, opts.Exclude, opts.TierWeights)
		}

		if result.Excluded {
			stats.Excluded++
			excluded = append(excluded, models.ExcludedPaper{Paper: paper, Reason: "excluded"})
			continue
		}
		if result.Score < opts.MinScore {
			excluded = append(excluded, models.ExcludedPaper{Paper: paper, Reason: "below-min-score"})
			continue
		}

		ranked = append(ranked, models.RankedPaper{Paper: paper, Result: result})
		scoreSum += result.Score
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Result.Score != b.Result.Score {
			return a.Result.Score > b.Result.Score
		}
		if !a.Paper.PublishedAt.Equal(b.Paper.PublishedAt) {
			return a.Paper.PublishedAt.After(b.Paper.PublishedAt)
		}
		return a.Paper.ID < b.Paper.ID
	})

	stats.Passed = len(ranked)
	if stats.Passed > 0 {
		stats.MinScore = ranked[len(ranked)-1].Result.Score
		stats.MaxScore = ranked[0].Result.Score
		stats.AvgScore = scoreSum / float64(stats.Passed)
	}

	return ranked, excluded, stats
}
