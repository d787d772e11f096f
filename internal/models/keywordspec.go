package models

import "strings"

// Tier is a weight class assigned to a run of keywords in RawInterest by a
// preceding marker comment line.
type Tier float64

const (
	TierCore     Tier = 2.5
	TierExtended Tier = 1.5
	TierRelated  Tier = 1.0
	TierDefault  Tier = 1.0
)

// tierMarkerGroup lists every alias (emoji, English phrase, Chinese
// term) that promotes a comment line to the given tier. A line need only
// contain one of these aliases, not equal it exactly.
type tierMarkerGroup struct {
	tier    Tier
	aliases []string
}

// DefaultTierMarkers lists the tier marker groups in priority order
// (first match wins). It is a package-level variable read directly by
// the tier detection in this file.
var DefaultTierMarkers = []tierMarkerGroup{
	{TierCore, []string{"🎯", "core concept", "核心概念", "高权重"}},
	{TierExtended, []string{"🔧", "extended concept", "扩展概念", "中权重"}},
	{TierRelated, []string{"📝", "related concept", "相关概念", "标准权重"}},
}

// markerTier returns the tier a comment line promotes to, if any. A line
// promotes a tier only if it starts with "#" and contains one of that
// tier's aliases anywhere in the line.
func markerTier(line string) (Tier, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return 0, false
	}
	lower := strings.ToLower(trimmed)
	for _, group := range DefaultTierMarkers {
		for _, alias := range group.aliases {
			if strings.Contains(lower, strings.ToLower(alias)) {
				return group.tier, true
			}
		}
	}
	return 0, false
}

// KeywordSpec is the per-profile configuration consumed by the relevance
// engine. It is owned by the configuration loader and treated as
// read-only by the core.
type KeywordSpec struct {
	RawInterest []string `json:"raw_interest" validate:"omitempty,dive"`
	Exclude     []string `json:"exclude"`
	Required    []string `json:"required"`

	RequiredFuzzyMatch        bool    `json:"required_fuzzy_match"`
	RequiredSimilarityThreshold float64 `json:"required_similarity_threshold" validate:"min=0,max=1"`
}

// Interest returns RawInterest with comment lines and blanks stripped,
// preserving order so position (and therefore position weight) survives.
func (k *KeywordSpec) Interest() []string {
	out := make([]string, 0, len(k.RawInterest))
	for _, line := range k.RawInterest {
		if _, isMarker := markerTier(line); isMarker {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// TierWeights returns the tier weight assigned to every returned Interest
// keyword, in the same order, as a pure function of RawInterest: a tier
// marker promotes every keyword that follows it until the next marker or
// the end of the list.
func (k *KeywordSpec) TierWeights() []Tier {
	weights := make([]Tier, 0, len(k.RawInterest))
	current := TierDefault
	for _, line := range k.RawInterest {
		if tier, ok := markerTier(line); ok {
			current = tier
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		weights = append(weights, current)
	}
	return weights
}
