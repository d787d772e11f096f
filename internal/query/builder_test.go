package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuild_EmptyInputsYieldUniversalMatch(t *testing.T) {
	b := New(nil)
	assert.Equal(t, "all:*", b.Build())
}

func TestBuild_CategoriesJoinWithOR(t *testing.T) {
	b := New(nil)
	b.Categories = []string{"cs.AI", "cs.RO"}
	assert.Equal(t, "(cat:cs.AI OR cat:cs.RO)", b.Build())
}

func TestBuild_SingleCategoryNoParens(t *testing.T) {
	b := New(nil)
	b.Categories = []string{"cs.AI"}
	assert.Equal(t, "cat:cs.AI", b.Build())
}

func TestBuild_DateWindowDefaults(t *testing.T) {
	b := New(nil)
	b.Window = &Window{}
	assert.Equal(t, "submittedDate:[199108010000 TO now]", b.Build())
}

func TestBuild_DateWindowExplicit(t *testing.T) {
	b := New(nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	b.Window = &Window{From: from, To: to}
	assert.Equal(t, "submittedDate:[202401010000 TO 202401222359]", b.Build())
}

func TestBuild_CombinesPartsWithAND(t *testing.T) {
	b := New(nil)
	b.Text = "robot learning"
	b.Categories = []string{"cs.RO"}
	assert.Equal(t, `all:robot learning AND cat:cs.RO`, b.Build())
}
