package acquisition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitWindow_ExactlyMaxDaysIsOneBatch(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	windows := splitWindow(from, to, 7, 0)
	assert.Len(t, windows, 1)
}

func TestSplitWindow_OneMoreDayTriggersTwoBatches(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	windows := splitWindow(from, to, 7, 0)
	assert.Len(t, windows, 2)
}

func TestSplitWindow_22DaySpanProducesFourSubWindows(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)
	windows := splitWindow(from, to, 7, 0)

	assert.Len(t, windows, 4)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), windows[0].From)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), windows[0].To)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), windows[1].From)
	assert.Equal(t, time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), windows[1].To)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), windows[2].From)
	assert.Equal(t, time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC), windows[2].To)
	assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), windows[3].From)
	assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), windows[3].To)
}
