package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/pollenai/assistant/internal/agent/graph/tools"
)

//go:embed template/planner_prompt.txt
var plannerSystemPrompt string

const plannerToolExample = `{
  "tool": "BOOK_MEETING",
  "tool_input": {
    "title": "Team Sync-up",
    "start_time": "2025-07-20T10:30:00+05:30",
    "duration_minutes": 30,
    "attendees": ["alex@bee-logical.com", "mia@bee-logical.com"]
  }
}`

// RenderPlannerSystem renders the planner system prompt with the registered
// tool docs spliced in. Known tokens only are replaced so JSON braces in the
// template survive untouched.
func RenderPlannerSystem(ctx context.Context, registered []tools.Tool) (string, error) {
	var docs strings.Builder
	for _, t := range registered {
		info := t.Info()
		docs.WriteString("TOOL: " + info.Name + "\n")
		docs.WriteString(info.Desc + "\n")
		docs.WriteString("Required fields: " + strings.Join(t.Required(), ", ") + "\n\n")
	}

	content := strings.NewReplacer(
		"{tools}", strings.TrimRight(docs.String(), "\n"),
		"{RAW_EXAMPLE}", plannerToolExample,
	).Replace(plannerSystemPrompt)

	// Wrap via Eino prompt component using a messages placeholder to emit callbacks
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("planner prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("planner prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
