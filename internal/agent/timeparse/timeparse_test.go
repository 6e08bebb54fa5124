package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollenai/assistant/internal/agent/model"
)

func testExtractor(t *testing.T, now time.Time) *Extractor {
	t.Helper()
	e, err := NewExtractor(model.ExtractorConfig{Timezone: "UTC"})
	require.NoError(t, err)
	e.now = func() time.Time { return now }
	return e
}

func TestExtract_NoTemporalExpression(t *testing.T) {
	e := testExtractor(t, time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))

	_, ok := e.Extract("what is our refund policy?")
	assert.False(t, ok)
}

func TestExtract_TomorrowAtThree(t *testing.T) {
	now := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	e := testExtractor(t, now)

	got, ok := e.Extract("book a meeting tomorrow at 3pm")
	require.True(t, ok)
	assert.Equal(t, 19, got.Day())
	assert.Equal(t, 15, got.Hour())
	assert.True(t, got.After(now))
}

func TestExtract_PastClockTimeRollsForward(t *testing.T) {
	now := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	e := testExtractor(t, now)

	got, ok := e.Extract("set up a call at 9am")
	require.True(t, ok)
	assert.Equal(t, 9, got.Hour())
	assert.True(t, got.After(now), "unqualified clock time earlier today must resolve to the future")
}

func TestExtract_WeekdayRollsForward(t *testing.T) {
	// Friday
	now := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	e := testExtractor(t, now)

	got, ok := e.Extract("schedule a sync on tuesday")
	require.True(t, ok)
	assert.Equal(t, time.Tuesday, got.Weekday())
	assert.Equal(t, 22, got.Day())
	assert.True(t, got.After(now))
}

func TestExtract_MonthDayRollsToNextYear(t *testing.T) {
	now := time.Date(2025, 12, 20, 12, 0, 0, 0, time.UTC)
	e := testExtractor(t, now)

	got, ok := e.Extract("book a review on 5 March at 10am")
	require.True(t, ok)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 5, got.Day())
	assert.Equal(t, 10, got.Hour())
	assert.True(t, got.After(now), "unqualified date must resolve to the next future occurrence")
}

func TestHasExplicitYear(t *testing.T) {
	assert.True(t, hasExplicitYear("5 March 2020"))
	assert.True(t, hasExplicitYear("on 2024-01-05"))
	assert.False(t, hasExplicitYear("5 March at 10am"))
	assert.False(t, hasExplicitYear("tomorrow at 3pm"))
}

func TestExtractISO_RoundTrips(t *testing.T) {
	now := time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC)
	e := testExtractor(t, now)

	iso, ok := e.ExtractISO("meet tomorrow at 10am")
	require.True(t, ok)

	parsed, err := time.Parse(time.RFC3339, iso)
	require.NoError(t, err)
	assert.Equal(t, 10, parsed.Hour())
}

func TestExtractISO_NoMatch(t *testing.T) {
	e := testExtractor(t, time.Date(2025, 7, 18, 12, 0, 0, 0, time.UTC))

	iso, ok := e.ExtractISO("no dates here")
	assert.False(t, ok)
	assert.Empty(t, iso)
}
