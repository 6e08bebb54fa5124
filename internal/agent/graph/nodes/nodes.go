package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/pollenai/assistant/internal/agent/graph/prompts"
	"github.com/pollenai/assistant/internal/agent/graph/tools"
	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/rag"
	"github.com/pollenai/assistant/internal/agent/timeparse"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Node names used across the graph.
const (
	NodeIntentConverter   = "intent_converter"
	NodeIntentChatModel   = "intent_chat_model"
	NodeIntentParser      = "intent_parser"
	NodePlannerAssembler  = "planner_assembler"
	NodePlannerChatModel  = "planner_chat_model"
	NodeToolDispatch      = "tool_dispatch"
	NodeKnowledgeAnswerer = "knowledge_answerer"
)

// ChatHistory is the chat log plus planner-ready history conversion.
type ChatHistory interface {
	model.ChatLog
	History(ctx context.Context, userID string, limit int) ([]*schema.Message, error)
}

// KnowledgeAnswerer is the RAG path; satisfied by *rag.Answerer.
type KnowledgeAnswerer interface {
	Answer(ctx context.Context, query, userID string) (*rag.Result, error)
}

// NewIntentConverterPreHandler seeds the request state and runs the datetime
// extractor over the raw query. When a temporal expression is found, the
// query is augmented with an explicit start-time directive so the planner is
// biased toward the correct timestamp instead of a relative phrase.
func NewIntentConverterPreHandler(extractor *timeparse.Extractor) func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.UserID = in.UserID
		s.Query = in.Query
		s.AugmentedQuery = in.Query
		s.ExtractedTime = ""
		s.TotalCostUSD = 0

		if iso, ok := extractor.ExtractISO(in.Query); ok {
			s.ExtractedTime = iso
			s.AugmentedQuery = in.Query + fmt.Sprintf(" Use start_time as '%s' in ISO 8601 format.", iso)
			logx.Debug().Str("user_id", in.UserID).Str("extracted_time", iso).Msg("datetime extracted from query")
		} else {
			logx.Debug().Str("user_id", in.UserID).Msg("no datetime found in query")
		}
		return in, nil
	}
}

// NewIntentConverterNode builds the binary classifier messages.
func NewIntentConverterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		return prompts.BuildIntentMessages(ctx, input.Query)
	})
}

// NewIntentParserNode interprets the classifier output. Anything other than
// an explicit affirmative is treated as negative, so ambiguous output fails
// toward the safer no-action path.
func NewIntentParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (model.IntentDecision, error) {
		if resp == nil {
			return model.IntentDecision{}, fmt.Errorf("intent classifier returned nil message")
		}
		raw := strings.TrimSpace(resp.Content)
		return model.IntentDecision{
			Action: strings.EqualFold(raw, "YES"),
			Raw:    raw,
		}, nil
	})
}

// NewIntentParserPostHandler saves the decision to state.
func NewIntentParserPostHandler() func(context.Context, model.IntentDecision, *model.AppState) (model.IntentDecision, error) {
	return func(ctx context.Context, out model.IntentDecision, state *model.AppState) (model.IntentDecision, error) {
		state.ActionIntent = out.Action
		logx.Debug().
			Str("user_id", state.UserID).
			Bool("action_intent", out.Action).
			Str("raw", out.Raw).
			Msg("intent classified")
		return out, nil
	}
}

// NewIntentBranchCondition routes affirmative intent to the planner path and
// everything else to the knowledge answerer. The classifier output is the
// sole gate: a false negative routes a legitimate booking request to the
// answerer, which is accepted behavior.
func NewIntentBranchCondition() func(context.Context, model.IntentDecision) (string, error) {
	return func(ctx context.Context, input model.IntentDecision) (string, error) {
		if input.Action {
			return NodePlannerAssembler, nil
		}
		return NodeKnowledgeAnswerer, nil
	}
}

// NewPlannerAssemblerNode builds the planner context: system prompt with the
// user's tool registry, recent conversation history, then the augmented query.
func NewPlannerAssemblerNode(history ChatHistory, deps tools.Deps, maxTurns int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.IntentDecision) ([]*schema.Message, error) {
		var userID, query string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			userID = state.UserID
			query = state.AugmentedQuery
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		registered := tools.Build(userID, deps)
		systemPrompt, err := prompts.RenderPlannerSystem(ctx, registered)
		if err != nil {
			return nil, fmt.Errorf("render planner prompt: %w", err)
		}

		past, err := history.History(ctx, userID, maxTurns)
		if err != nil {
			return nil, fmt.Errorf("load chat history: %w", err)
		}

		messages := make([]*schema.Message, 0, len(past)+2)
		messages = append(messages, schema.SystemMessage(systemPrompt))
		messages = append(messages, past...)
		messages = append(messages, schema.UserMessage(query))
		return messages, nil
	})
}

// NewKnowledgeAnswererNode runs the RAG path over the raw query and persists
// the rag-type turn.
func NewKnowledgeAnswererNode(answerer KnowledgeAnswerer, log model.ChatLog) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.IntentDecision) (*model.Answer, error) {
		var userID, query string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			userID = state.UserID
			query = state.Query
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		return AnswerWithKnowledge(ctx, answerer, log, userID, query)
	})
}

// NewChatModelCostPostHandler computes and logs usage cost for a model node.
func NewChatModelCostPostHandler(nodeName, modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			state.TotalCostUSD += totalC
			logx.Debug().
				Str("user_id", state.UserID).
				Str("node", nodeName).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", state.TotalCostUSD).
				Msg("LLM usage")
		}
		return out, nil
	}
}
