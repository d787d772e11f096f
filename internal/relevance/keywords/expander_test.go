package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand_AbbreviationPullsLongForm(t *testing.T) {
	expanded := Expand([]string{"llm"})
	assert.Contains(t, expanded, "llm")
	assert.Contains(t, expanded, "large language model")
}

func TestExpand_LongFormPullsAbbreviation(t *testing.T) {
	expanded := Expand([]string{"large language model"})
	assert.Contains(t, expanded, "large language model")
	assert.Contains(t, expanded, "llm")
}

func TestExpand_SynonymMatchIsBidirectionalBySubstring(t *testing.T) {
	expanded := Expand([]string{"robot"})
	assert.Contains(t, expanded, "robotics")
	assert.Contains(t, expanded, "humanoid")
}

func TestExpand_IsIdempotent(t *testing.T) {
	first := Expand([]string{"ai"})
	second := Expand(first)
	assert.ElementsMatch(t, first, second)
}

func TestVariants_IncludesPluralAndSeparatorSwaps(t *testing.T) {
	variants := Variants("path planning")
	assert.Contains(t, variants, "path plannings")
	assert.Contains(t, variants, "path-planning")
	assert.Contains(t, variants, "path_planning")
	assert.Contains(t, variants, "pathplanning")
}

func TestPresets_RoboticsHasCsRO(t *testing.T) {
	preset, ok := Presets["robotics"]
	assert.True(t, ok)
	assert.Contains(t, preset.Categories, "cs.RO")
}
