package relevance

import (
	"testing"
	"time"

	"arxivsync/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFilterAndRank_RequiredGateDropsNonMatches(t *testing.T) {
	match := paperWith("Mobile Manipulation for Service Robots", "")
	match.ID = "2401.00001"
	reject := paperWith("Autonomous Navigation System", "This paper focuses on autonomous navigation algorithms.")
	reject.ID = "2401.00002"

	ranked, excluded, stats := FilterAndRank([]models.Paper{match, reject}, FilterOptions{
		Required:                    []string{"mobile OR locomotion", "manipulation"},
		RequiredFuzzyMatch:          true,
		RequiredSimilarityThreshold: 0.8,
	})

	assert.Len(t, ranked, 1)
	assert.Equal(t, "2401.00001", ranked[0].Paper.ID)
	assert.Len(t, excluded, 1)
	assert.Equal(t, 1, stats.RequiredFiltered)
}

func TestFilterAndRank_SortsByScoreThenPublishedThenID(t *testing.T) {
	older := paperWith("Robot Learning Robot", "robot robot robot")
	older.ID = "2401.00002"
	older.PublishedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	newer := paperWith("Robot Learning Robot", "robot robot robot")
	newer.ID = "2401.00001"
	newer.PublishedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	low := paperWith("Unrelated Paper", "nothing relevant here")
	low.ID = "2401.00003"

	ranked, _, _ := FilterAndRank([]models.Paper{low, older, newer}, FilterOptions{
		Interest: []string{"robot"},
		MinScore: -1000,
	})

	assert.Equal(t, "2401.00001", ranked[0].Paper.ID)
	assert.Equal(t, "2401.00002", ranked[1].Paper.ID)
}

func TestFilterAndRank_NoInterestOrExcludePassesUnchanged(t *testing.T) {
	paper := paperWith("Anything", "")
	ranked, excluded, stats := FilterAndRank([]models.Paper{paper}, FilterOptions{})

	assert.Len(t, ranked, 1)
	assert.Empty(t, excluded)
	assert.Equal(t, 1, stats.Passed)
}
