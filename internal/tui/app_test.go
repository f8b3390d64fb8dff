package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waggle/internal/beeminder"
)

func TestParseQuickAdd(t *testing.T) {
	value, comment, err := parseQuickAdd("2.5 after lunch")
	require.NoError(t, err)
	assert.Equal(t, 2.5, value)
	assert.Equal(t, "after lunch", comment)

	value, comment, err = parseQuickAdd("  3 ")
	require.NoError(t, err)
	assert.Equal(t, 3.0, value)
	assert.Empty(t, comment)

	_, _, err = parseQuickAdd("")
	assert.Error(t, err)

	_, _, err = parseQuickAdd("lots running")
	assert.Error(t, err)
}

func TestRefreshFiltered_MatchesSlugAndTitle(t *testing.T) {
	app := &App{
		goals: []beeminder.GoalSummary{
			{Slug: "running", Title: "Run regularly"},
			{Slug: "reading", Title: "Books"},
			{Slug: "pushups", Title: "Morning Routine"},
		},
	}

	app.refreshFiltered()
	assert.Len(t, app.filtered, 3)

	app.filter = "run"
	app.refreshFiltered()
	assert.Equal(t, []int{0}, app.filtered)

	app.filter = "ROUTINE"
	app.refreshFiltered()
	assert.Equal(t, []int{2}, app.filtered, "title matches are case-insensitive")

	app.filter = "nothing"
	app.refreshFiltered()
	assert.Empty(t, app.filtered)
	assert.Equal(t, 0, app.selected)
}

func TestClampIndex(t *testing.T) {
	assert.Equal(t, 0, clampIndex(-2, 5))
	assert.Equal(t, 3, clampIndex(3, 5))
	assert.Equal(t, 5, clampIndex(9, 5))
}
