package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/pollenai/assistant/internal/agent/booking"
	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/timeparse"
	logx "github.com/pollenai/assistant/pkg/logger"
)

const ToolBookMeeting = "BOOK_MEETING"

// bookMeetingRequired lists the keys a structured call must expose.
var bookMeetingRequired = []string{"title", "start_time", "duration_minutes", "attendees"}

// BookMeetingTool schedules a meeting on the user's external calendar.
type BookMeetingTool struct {
	userID    string
	executor  *booking.Executor
	extractor *timeparse.Extractor
}

func NewBookMeetingTool(userID string, executor *booking.Executor, extractor *timeparse.Extractor) (*BookMeetingTool, error) {
	if executor == nil {
		return nil, fmt.Errorf("booking executor is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("datetime extractor is required")
	}
	return &BookMeetingTool{userID: userID, executor: executor, extractor: extractor}, nil
}

func (t *BookMeetingTool) Info() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolBookMeeting,
		Desc: "Schedules a meeting on the user's calendar. " +
			"Inputs must be: `title` (string, e.g. 'Marketing Plan Review'), " +
			"`start_time` (ISO 8601 string with timezone, e.g. '2025-07-18T15:30:00+05:30'), " +
			"`duration_minutes` (integer, e.g. 60), " +
			"`attendees` (list of emails, e.g. ['alice@example.com', 'bob@example.com']).",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"title": {
				Type:     "string",
				Desc:     "A clear, short title for the meeting.",
				Required: true,
			},
			"start_time": {
				Type:     "string",
				Desc:     "Meeting start in full ISO 8601 format with timezone offset, e.g. 2025-07-20T10:30:00+05:30.",
				Required: true,
			},
			"duration_minutes": {
				Type:     "number",
				Desc:     "Meeting duration in minutes, a positive integer such as 30 or 60.",
				Required: true,
			},
			"attendees": {
				Type:     "array",
				Desc:     "Email addresses of attendees.",
				ElemInfo: &schema.ParameterInfo{Type: "string"},
				Required: true,
			},
		}),
	}
}

func (t *BookMeetingTool) Required() []string {
	return bookMeetingRequired
}

// Invoke books the meeting. A failed external call becomes a user-facing
// explanation, never an error surfaced to the caller.
func (t *BookMeetingTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	req, err := t.meetingRequest(args)
	if err != nil {
		return fmt.Sprintf("❌ Failed to book meeting: %v", err), nil
	}

	logx.Debug().
		Str("user_id", t.userID).
		Str("title", req.Title).
		Str("start_time", req.StartTime).
		Msg("book-meeting tool triggered")

	if _, err := t.executor.Book(ctx, t.userID, req); err != nil {
		return fmt.Sprintf("❌ Failed to book meeting: %s", err.Error()), nil
	}

	return fmt.Sprintf("✅ Meeting '%s' booked on %s for %d minutes with %s.",
		req.Title, req.StartTime, req.DurationMinutes, strings.Join(req.Attendees, ", ")), nil
}

func (t *BookMeetingTool) meetingRequest(args map[string]any) (model.MeetingRequest, error) {
	var req model.MeetingRequest

	req.Title, _ = args["title"].(string)
	req.StartTime, _ = args["start_time"].(string)

	duration, err := coerceInt(args["duration_minutes"])
	if err != nil {
		return req, fmt.Errorf("duration_minutes: %w", err)
	}
	req.DurationMinutes = duration

	attendees, err := coerceAttendees(args["attendees"])
	if err != nil {
		return req, err
	}
	req.Attendees = attendees

	// Planner output occasionally carries a relative phrase instead of an
	// ISO timestamp; run it through the extractor before validation.
	if _, perr := time.Parse(time.RFC3339, req.StartTime); perr != nil {
		if iso, ok := t.extractor.ExtractISO(req.StartTime); ok {
			req.StartTime = iso
		}
	}

	return req, nil
}

func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("not an integer: %v", v)
	}
}

// coerceAttendees accepts a JSON array, a JSON-encoded string of one, or a
// comma-separated string, since planners emit all three shapes.
func coerceAttendees(v any) ([]string, error) {
	switch a := v.(type) {
	case []any:
		out := make([]string, 0, len(a))
		for _, e := range a {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("attendees must be a list of emails")
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, nil
	case []string:
		return a, nil
	case string:
		trimmed := strings.TrimSpace(a)
		if strings.HasPrefix(trimmed, "[") {
			var out []string
			if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
				return nil, fmt.Errorf("attendees must be a list of emails")
			}
			return out, nil
		}
		var out []string
		for _, part := range strings.Split(trimmed, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("attendees must be a list of emails")
	}
}

var _ Tool = (*BookMeetingTool)(nil)
