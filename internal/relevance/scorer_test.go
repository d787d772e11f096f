package relevance

import (
	"testing"
	"time"

	"arxivsync/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestScore_WildcardInterestExcludesOnSurvey(t *testing.T) {
	paper := paperWith("A Survey of Graph Networks", "")
	result := Score(paper, []string{"*"}, []string{"survey"}, nil)

	assert.True(t, result.Excluded)
	assert.Equal(t, models.ExcludedScore, result.Score)
	assert.Equal(t, []string{"survey"}, result.MatchedExclude)
}

func TestScore_ExcludeViaFuzzyAnnotatesMatch(t *testing.T) {
	paper := paperWith("Survey of Methods", "")
	result := Score(paper, []string{"*"}, []string{"surveys"}, nil)

	assert.True(t, result.Excluded)
	assert.NotEmpty(t, result.MatchedExclude)
}

func TestScore_WildcardNonExcludedGetsPerfectScore(t *testing.T) {
	paper := paperWith("Anything At All", "")
	result := Score(paper, []string{"*"}, nil, nil)

	assert.False(t, result.Excluded)
	assert.Equal(t, 1.0, result.Score)
	assert.Equal(t, []string{"*"}, result.MatchedInterest)
}

func TestScore_FutureDatePublishedHasNoDecay(t *testing.T) {
	paper := paperWith("Robot Manipulation", "")
	paper.PublishedAt = time.Now().Add(48 * time.Hour)
	result := Score(paper, []string{"robot"}, nil, nil)

	assert.False(t, result.Excluded)
	assert.Greater(t, result.Score, 0.0)
}

func TestScore_TierWeightScalesContribution(t *testing.T) {
	paper := paperWith("Robot Manipulation Research", "")
	paper.PublishedAt = time.Now()

	core := Score(paper, []string{"robot"}, nil, []models.Tier{models.TierCore})
	def := Score(paper, []string{"robot"}, nil, []models.Tier{models.TierDefault})

	assert.InDelta(t, core.Score, def.Score*2.5, 0.01)
}

func TestVariantScore_FuzzyMatchIsPerWordNotWholeText(t *testing.T) {
	// "andorid" is a one-transposition typo of the "robot" synonym
	// "android"; per-word fuzzy matching against it should score well
	// above zero even though the whole joined title/abstract string is
	// nowhere close to the short keyword by edit distance.
	titleWords := []string{"andorid", "control", "systems"}
	abstractLower := "study of andorid locomotion"

	score := variantScore("android", titleWords, abstractLower, "cs.RO")

	assert.Greater(t, score, 1.0)
}
