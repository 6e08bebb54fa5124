package nodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/pollenai/assistant/internal/agent/graph/parsers"
	"github.com/pollenai/assistant/internal/agent/graph/tools"
	"github.com/pollenai/assistant/internal/agent/model"
	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Dispatcher turns raw planner output into a final answer. The planner turn
// is always persisted before anything else so conversation context survives
// parse failures and tool errors.
type Dispatcher struct {
	deps     tools.Deps
	log      model.ChatLog
	answerer KnowledgeAnswerer
}

func NewDispatcher(deps tools.Deps, log model.ChatLog, answerer KnowledgeAnswerer) *Dispatcher {
	return &Dispatcher{deps: deps, log: log, answerer: answerer}
}

// Dispatch parses the planner output and runs at most one tool.
//
// No braces in the output means the planner replied conversationally, so the
// request falls back to the knowledge path. A malformed block that does
// contain braces is returned verbatim as an agent reply rather than guessed
// at.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, query, raw string) (*model.Answer, error) {
	agentTurn := model.ChatTurn{
		UserID:      userID,
		UserInput:   query,
		BotResponse: raw,
		Type:        model.ResponseTypeAgent,
		Timestamp:   time.Now(),
	}
	if err := d.log.Append(ctx, agentTurn); err != nil {
		logx.Warn().Err(err).Str("user_id", userID).Msg("failed to persist agent turn")
	}

	registered := tools.Build(userID, d.deps)

	call, err := parsers.ExtractToolCall(raw, tools.Names(registered))
	if err != nil {
		if errors.Is(err, parsers.ErrNoBraces) {
			logx.Debug().Str("user_id", userID).Msg("planner replied without tool call, falling back to knowledge path")
			return AnswerWithKnowledge(ctx, d.answerer, d.log, userID, query)
		}
		logx.Warn().Err(err).Str("user_id", userID).Msg("tool call extraction failed")
		return &model.Answer{Text: raw, Type: model.ResponseTypeAgent}, nil
	}

	tool := tools.Find(registered, call.Tool)
	if tool == nil {
		logx.Warn().Str("user_id", userID).Str("tool", call.Tool).Msg("planner requested unknown tool")
		return &model.Answer{Text: raw, Type: model.ResponseTypeAgent}, nil
	}

	if missing := missingFields(tool.Required(), call.Input); len(missing) > 0 {
		err := errx.MissingRequiredFields(missing)
		logx.Debug().Str("user_id", userID).Strs("fields", missing).Msg("tool call missing required fields")
		return &model.Answer{Text: err.Message, Type: model.ResponseTypeAgent}, nil
	}

	logx.Info().
		Str("user_id", userID).
		Str("tool", call.Tool).
		Str("variant", call.Variant).
		Msg("dispatching tool call")

	result, err := tool.Invoke(ctx, call.Input)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", call.Tool, err)
	}

	toolTurn := model.ChatTurn{
		UserID:      userID,
		UserInput:   query,
		BotResponse: result,
		Type:        model.ResponseTypeTool,
		ToolUsed:    call.Tool,
		Timestamp:   time.Now(),
	}
	if err := d.log.Append(ctx, toolTurn); err != nil {
		logx.Warn().Err(err).Str("user_id", userID).Msg("failed to persist tool turn")
	}

	return &model.Answer{Text: result, Type: model.ResponseTypeTool, ToolUsed: call.Tool}, nil
}

func missingFields(required []string, input map[string]any) []string {
	var missing []string
	for _, key := range required {
		v, ok := input[key]
		if !ok || v == nil {
			missing = append(missing, key)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// AnswerWithKnowledge runs the retrieval path and persists the rag turn.
// Shared by the answerer node and the dispatcher fallback.
func AnswerWithKnowledge(ctx context.Context, answerer KnowledgeAnswerer, log model.ChatLog, userID, query string) (*model.Answer, error) {
	result, err := answerer.Answer(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	turn := model.ChatTurn{
		UserID:      userID,
		UserInput:   query,
		BotResponse: result.Answer,
		Type:        model.ResponseTypeRAG,
		Timestamp:   time.Now(),
	}
	if err := log.Append(ctx, turn); err != nil {
		logx.Warn().Err(err).Str("user_id", userID).Msg("failed to persist rag turn")
	}

	return &model.Answer{Text: result.Answer, Type: model.ResponseTypeRAG}, nil
}

// NewToolDispatchNode wraps the dispatcher as a graph lambda fed by the
// planner chat model.
func NewToolDispatchNode(d *Dispatcher) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (*model.Answer, error) {
		var userID, query string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			userID = state.UserID
			query = state.Query
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		raw := ""
		if resp != nil {
			raw = resp.Content
		}
		return d.Dispatch(ctx, userID, query, raw)
	})
}
