package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollenai/assistant/internal/agent/booking"
	"github.com/pollenai/assistant/internal/agent/graph/tools"
	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/rag"
	"github.com/pollenai/assistant/internal/agent/timeparse"
)

type memChatLog struct {
	turns []model.ChatTurn
}

func (m *memChatLog) Append(ctx context.Context, turn model.ChatTurn) error {
	m.turns = append(m.turns, turn)
	return nil
}

func (m *memChatLog) Recent(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	return m.turns, nil
}

type stubAnswerer struct {
	answer    string
	lastQuery string
	calls     int
}

func (s *stubAnswerer) Answer(ctx context.Context, query, userID string) (*rag.Result, error) {
	s.calls++
	s.lastQuery = query
	return &rag.Result{Answer: s.answer}, nil
}

type emptyCredStore struct{}

func (emptyCredStore) Get(ctx context.Context, userID string) (*model.UserCredential, error) {
	return nil, nil
}

func (emptyCredStore) Put(ctx context.Context, cred model.UserCredential) error { return nil }

func testDeps(t *testing.T) tools.Deps {
	t.Helper()
	extractor, err := timeparse.NewExtractor(model.ExtractorConfig{Timezone: "UTC"})
	require.NoError(t, err)
	executor := booking.NewExecutor(model.BookingConfig{
		AccountsURL: "http://localhost:1",
		CalendarURL: "http://localhost:1",
		Timezone:    "UTC",
		TimeoutSecs: 1,
	}, emptyCredStore{})
	return tools.Deps{Booking: executor, Extractor: extractor}
}

func TestDispatch_NoBracesFallsBackToKnowledge(t *testing.T) {
	log := &memChatLog{}
	answerer := &stubAnswerer{answer: "from the docs"}
	d := NewDispatcher(testDeps(t), log, answerer)

	ans, err := d.Dispatch(context.Background(), "u1", "what is the policy?", "Let me check that for you.")
	require.NoError(t, err)

	assert.Equal(t, model.ResponseTypeRAG, ans.Type)
	assert.Equal(t, "from the docs", ans.Text)
	assert.Equal(t, 1, answerer.calls)
	assert.Equal(t, "what is the policy?", answerer.lastQuery)

	require.Len(t, log.turns, 2)
	assert.Equal(t, model.ResponseTypeAgent, log.turns[0].Type)
	assert.Equal(t, "Let me check that for you.", log.turns[0].BotResponse)
	assert.Equal(t, model.ResponseTypeRAG, log.turns[1].Type)
}

func TestDispatch_UnparseableBracesReturnsRawText(t *testing.T) {
	log := &memChatLog{}
	answerer := &stubAnswerer{}
	d := NewDispatcher(testDeps(t), log, answerer)

	raw := "here is { not json at all }"
	ans, err := d.Dispatch(context.Background(), "u1", "book something", raw)
	require.NoError(t, err)

	assert.Equal(t, model.ResponseTypeAgent, ans.Type)
	assert.Equal(t, raw, ans.Text)
	assert.Zero(t, answerer.calls)

	require.Len(t, log.turns, 1)
	assert.Equal(t, model.ResponseTypeAgent, log.turns[0].Type)
}

func TestDispatch_MissingFieldsNamesKeys(t *testing.T) {
	log := &memChatLog{}
	d := NewDispatcher(testDeps(t), log, &stubAnswerer{})

	raw := `{"tool": "BOOK_MEETING", "tool_input": {"title": "Sync"}}`
	ans, err := d.Dispatch(context.Background(), "u1", "book a sync", raw)
	require.NoError(t, err)

	assert.Equal(t, model.ResponseTypeAgent, ans.Type)
	assert.Contains(t, ans.Text, "missing required fields: start_time, duration_minutes, attendees")
	require.Len(t, log.turns, 1, "no tool turn when the call is incomplete")
}

func TestDispatch_UnknownToolReturnsRawText(t *testing.T) {
	log := &memChatLog{}
	d := NewDispatcher(testDeps(t), log, &stubAnswerer{})

	raw := `{"tool": "DELETE_EVERYTHING", "tool_input": {"target": "all"}}`
	ans, err := d.Dispatch(context.Background(), "u1", "wipe it", raw)
	require.NoError(t, err)

	assert.Equal(t, model.ResponseTypeAgent, ans.Type)
	assert.Equal(t, raw, ans.Text)
	require.Len(t, log.turns, 1)
}

func TestDispatch_ToolInvocationLogsToolTurn(t *testing.T) {
	log := &memChatLog{}
	d := NewDispatcher(testDeps(t), log, &stubAnswerer{})

	raw := `{"tool": "BOOK_MEETING", "tool_input": {` +
		`"title": "Sync", "start_time": "2025-07-20T10:30:00+05:30", ` +
		`"duration_minutes": 30, "attendees": ["a@x.com"]}}`

	ans, err := d.Dispatch(context.Background(), "u1", "book a sync tomorrow", raw)
	require.NoError(t, err)

	// The user has no stored credential, so the tool reports the failure as
	// user-facing text rather than an error.
	assert.Equal(t, model.ResponseTypeTool, ans.Type)
	assert.Equal(t, tools.ToolBookMeeting, ans.ToolUsed)
	assert.Contains(t, ans.Text, "not authorized")

	require.Len(t, log.turns, 2)
	assert.Equal(t, model.ResponseTypeAgent, log.turns[0].Type)
	assert.Equal(t, model.ResponseTypeTool, log.turns[1].Type)
	assert.Equal(t, tools.ToolBookMeeting, log.turns[1].ToolUsed)
}

func TestMissingFields(t *testing.T) {
	required := []string{"title", "start_time", "attendees"}

	missing := missingFields(required, map[string]any{
		"title":      "Sync",
		"start_time": "",
		"attendees":  nil,
	})
	assert.Equal(t, []string{"start_time", "attendees"}, missing)

	assert.Empty(t, missingFields(required, map[string]any{
		"title":      "Sync",
		"start_time": "2025-07-20T10:30:00+05:30",
		"attendees":  []any{"a@x.com"},
	}))
}

func TestIntentBranchCondition(t *testing.T) {
	cond := NewIntentBranchCondition()

	next, err := cond(context.Background(), model.IntentDecision{Action: true, Raw: "YES"})
	require.NoError(t, err)
	assert.Equal(t, NodePlannerAssembler, next)

	next, err = cond(context.Background(), model.IntentDecision{Action: false, Raw: "Maybe"})
	require.NoError(t, err)
	assert.Equal(t, NodeKnowledgeAnswerer, next)
}
