package prompts

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const intentSystemPrompt = "You are an assistant that decides if a user query needs to trigger a calendar booking tool."

const intentUserPrompt = "Query: {query}\n\n" +
	"Is this trying to schedule a meeting or book something? Reply with 'YES' or 'NO' only."

// BuildIntentMessages renders the binary intent-classification prompt via the
// Eino prompt component so prompt callbacks fire.
func BuildIntentMessages(ctx context.Context, query string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(intentSystemPrompt),
		schema.UserMessage(intentUserPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{"query": query})
	if err != nil {
		return nil, fmt.Errorf("intent prompt render: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("intent prompt render: empty result")
	}
	return msgs, nil
}
