package tools

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/pollenai/assistant/internal/agent/booking"
	"github.com/pollenai/assistant/internal/agent/timeparse"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Tool is a named, schema-described callable action. Exactly one tool is
// dispatched per request, looked up by exact name.
type Tool interface {
	Info() *schema.ToolInfo
	Required() []string
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Deps supplies the collaborators tool constructors need.
type Deps struct {
	Booking   *booking.Executor
	Extractor *timeparse.Extractor
}

// Build constructs all tools for the user. A failure to construct one tool
// must not abort loading the others: the registry logs and skips, returning
// whatever subset succeeded (possibly empty).
func Build(userID string, deps Deps) []Tool {
	var out []Tool

	if t, err := NewBookMeetingTool(userID, deps.Booking, deps.Extractor); err != nil {
		logx.Warn().Err(err).Str("tool", ToolBookMeeting).Msg("failed to load tool, skipping")
	} else {
		out = append(out, t)
	}

	return out
}

// Find returns the first tool with the exact name, or nil.
func Find(ts []Tool, name string) Tool {
	for _, t := range ts {
		if t.Info().Name == name {
			return t
		}
	}
	return nil
}

// Names returns the registered tool names in registry order.
func Names(ts []Tool) []string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Info().Name)
	}
	return names
}
