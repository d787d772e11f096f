package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterest_StripsMarkerAndBlankLines(t *testing.T) {
	spec := KeywordSpec{RawInterest: []string{
		"# 🎯 核心概念",
		"robotics",
		"",
		"# related stuff",
		"slam",
	}}
	assert.Equal(t, []string{"robotics", "slam"}, spec.Interest())
}

func TestTierWeights_PromotesUntilNextMarker(t *testing.T) {
	spec := KeywordSpec{RawInterest: []string{
		"# 🎯 核心概念 robotics",
		"robotics",
		"manipulation",
		"# 📝 相关概念",
		"control theory",
	}}
	assert.Equal(t, []Tier{TierCore, TierCore, TierRelated}, spec.TierWeights())
}

func TestMarkerTier_MatchesBySubstringNotExactEquality(t *testing.T) {
	tier, ok := markerTier("# 🎯 核心概念 robotics and automation")
	assert.True(t, ok)
	assert.Equal(t, TierCore, tier)
}

func TestMarkerTier_RecognizesChineseWeightAliases(t *testing.T) {
	cases := map[string]Tier{
		"# 高权重关键词":  TierCore,
		"# 中权重关键词":  TierExtended,
		"# 标准权重关键词": TierRelated,
	}
	for line, want := range cases {
		tier, ok := markerTier(line)
		assert.True(t, ok, "line %q should match a marker", line)
		assert.Equal(t, want, tier, "line %q", line)
	}
}

func TestMarkerTier_RequiresCommentPrefix(t *testing.T) {
	_, ok := markerTier("核心概念")
	assert.False(t, ok)
}

func TestMarkerTier_NonMarkerCommentIsIgnored(t *testing.T) {
	_, ok := markerTier("# just a note")
	assert.False(t, ok)
}
