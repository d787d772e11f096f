package relevance

import (
	"testing"
	"time"

	"arxivsync/internal/models"
	"github.com/stretchr/testify/assert"
)

func paperWith(title, abstract string) models.Paper {
	return models.Paper{
		ID:          "2401.00001",
		Title:       title,
		Abstract:    abstract,
		Categories:  []string{"cs.RO"},
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EntryURL:    "http://arxiv.org/abs/2401.00001",
	}
}

func TestCheckRequired_ANDOfORMatches(t *testing.T) {
	paper := paperWith("Mobile Manipulation for Service Robots", "")
	pass, matched := CheckRequired(paper, []string{"mobile OR locomotion", "manipulation"}, true, 0.8)

	assert.True(t, pass)
	assert.ElementsMatch(t, []string{"mobile", "manipulation"}, matched)
}

func TestCheckRequired_RejectsWhenAClauseFails(t *testing.T) {
	paper := paperWith("Autonomous Navigation System", "This paper focuses on autonomous navigation algorithms.")
	pass, _ := CheckRequired(paper, []string{"mobile OR locomotion", "manipulation"}, true, 0.8)

	assert.False(t, pass)
}

func TestCheckRequired_EmptyClausesAlwaysPass(t *testing.T) {
	paper := paperWith("Anything", "")
	pass, matched := CheckRequired(paper, nil, true, 0.8)

	assert.True(t, pass)
	assert.Empty(t, matched)
}
