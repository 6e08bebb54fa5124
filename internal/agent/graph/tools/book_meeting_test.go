package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollenai/assistant/internal/agent/booking"
	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/timeparse"
)

type noopCredStore struct{}

func (noopCredStore) Get(ctx context.Context, userID string) (*model.UserCredential, error) {
	return nil, nil
}

func (noopCredStore) Put(ctx context.Context, cred model.UserCredential) error { return nil }

func testTool(t *testing.T) *BookMeetingTool {
	t.Helper()
	extractor, err := timeparse.NewExtractor(model.ExtractorConfig{Timezone: "UTC"})
	require.NoError(t, err)
	executor := booking.NewExecutor(model.BookingConfig{TimeoutSecs: 1}, noopCredStore{})

	tool, err := NewBookMeetingTool("u1", executor, extractor)
	require.NoError(t, err)
	return tool
}

func TestMeetingRequest_Coercions(t *testing.T) {
	tool := testTool(t)

	req, err := tool.meetingRequest(map[string]any{
		"title":            "Sync",
		"start_time":       "2025-07-20T10:30:00+05:30",
		"duration_minutes": float64(30), // JSON numbers decode as float64
		"attendees":        []any{"a@x.com", " b@x.com "},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, req.DurationMinutes)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, req.Attendees)
}

func TestMeetingRequest_DurationAsString(t *testing.T) {
	tool := testTool(t)

	req, err := tool.meetingRequest(map[string]any{
		"title":            "Sync",
		"start_time":       "2025-07-20T10:30:00+05:30",
		"duration_minutes": "45",
		"attendees":        []any{"a@x.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 45, req.DurationMinutes)
}

func TestMeetingRequest_AttendeesAsJSONString(t *testing.T) {
	tool := testTool(t)

	req, err := tool.meetingRequest(map[string]any{
		"title":            "Sync",
		"start_time":       "2025-07-20T10:30:00+05:30",
		"duration_minutes": float64(30),
		"attendees":        `["a@x.com", "b@x.com"]`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, req.Attendees)
}

func TestMeetingRequest_AttendeesAsCommaString(t *testing.T) {
	tool := testTool(t)

	req, err := tool.meetingRequest(map[string]any{
		"title":            "Sync",
		"start_time":       "2025-07-20T10:30:00+05:30",
		"duration_minutes": float64(30),
		"attendees":        "a@x.com, b@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, req.Attendees)
}

func TestMeetingRequest_RelativeStartTimeExtracted(t *testing.T) {
	tool := testTool(t)

	req, err := tool.meetingRequest(map[string]any{
		"title":            "Sync",
		"start_time":       "tomorrow at 3pm",
		"duration_minutes": float64(30),
		"attendees":        []any{"a@x.com"},
	})
	require.NoError(t, err)
	assert.NoError(t, req.Validate(), "relative phrase must resolve to a parseable timestamp")
}

func TestMeetingRequest_BadDuration(t *testing.T) {
	tool := testTool(t)

	_, err := tool.meetingRequest(map[string]any{
		"title":            "Sync",
		"start_time":       "2025-07-20T10:30:00+05:30",
		"duration_minutes": "half an hour",
		"attendees":        []any{"a@x.com"},
	})
	assert.Error(t, err)
}

func TestInvoke_ExecutorFailureBecomesText(t *testing.T) {
	tool := testTool(t)

	out, err := tool.Invoke(context.Background(), map[string]any{
		"title":            "Sync",
		"start_time":       "2025-07-20T10:30:00+05:30",
		"duration_minutes": float64(30),
		"attendees":        []any{"a@x.com"},
	})
	require.NoError(t, err, "booking failures surface as user-facing text")
	assert.Contains(t, out, "❌ Failed to book meeting")
}

func TestRegistry_BuildFindNames(t *testing.T) {
	extractor, err := timeparse.NewExtractor(model.ExtractorConfig{Timezone: "UTC"})
	require.NoError(t, err)
	executor := booking.NewExecutor(model.BookingConfig{TimeoutSecs: 1}, noopCredStore{})

	registered := Build("u1", Deps{Booking: executor, Extractor: extractor})
	require.Len(t, registered, 1)
	assert.Equal(t, []string{ToolBookMeeting}, Names(registered))

	assert.NotNil(t, Find(registered, ToolBookMeeting))
	assert.Nil(t, Find(registered, "book_meeting"), "lookup is by exact name")
}

func TestRegistry_SkipsBrokenTool(t *testing.T) {
	// Missing extractor fails the book-meeting constructor; the registry
	// logs and returns the remaining subset.
	registered := Build("u1", Deps{Booking: booking.NewExecutor(model.BookingConfig{}, noopCredStore{})})
	assert.Empty(t, registered)
}
