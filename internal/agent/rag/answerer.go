package rag

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/pollenai/assistant/internal/agent/model"
	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

//go:embed template/answer_prompt.txt
var answerPromptTemplate string

//go:embed template/summary_prompt.txt
var summaryPromptTemplate string

// summaryWords trigger the simplified-explanation template. The match is a
// case-insensitive substring test, decided once per call.
var summaryWords = []string{"summarize", "summary", "explain", "overview"}

// Result carries the grounded answer together with the retrieval context and
// the metadata (not content) of every retrieved source.
type Result struct {
	Answer  string                `json:"answer"`
	Context string                `json:"context"`
	Sources []model.ChunkMetadata `json:"sources"`
}

// Answerer retrieves a fixed top-k set of passages for a query and
// synthesizes an answer with the language model. The query text is embedded
// as-is; there is no query rewriting.
type Answerer struct {
	index Index
	chat  einomodel.BaseChatModel
	topK  int
}

func NewAnswerer(index Index, chat einomodel.BaseChatModel, topK int) *Answerer {
	if topK <= 0 {
		topK = 5
	}
	return &Answerer{index: index, chat: chat, topK: topK}
}

func (a *Answerer) Answer(ctx context.Context, query, userID string) (*Result, error) {
	chunks, err := a.index.Query(ctx, query, a.topK)
	if err != nil {
		return nil, err
	}

	// Concatenate passage texts in retrieval-rank order; no deduplication.
	texts := make([]string, 0, len(chunks))
	sources := make([]model.ChunkMetadata, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Content)
		sources = append(sources, c.Metadata)
	}
	contextText := strings.Join(texts, "\n\n")

	template := answerPromptTemplate
	if isSummaryRequest(query) {
		logx.Debug().Str("user_id", userID).Msg("summary intent detected")
		template = summaryPromptTemplate
	}

	messages, err := renderAnswerPrompt(ctx, template, contextText, query)
	if err != nil {
		return nil, err
	}

	out, err := a.chat.Generate(ctx, messages)
	if err != nil {
		return nil, errx.UpstreamUnavailable("answer model", err)
	}
	if out == nil {
		return nil, errx.UpstreamUnavailable("answer model", fmt.Errorf("empty response"))
	}

	logx.Debug().
		Str("user_id", userID).
		Int("retrieved", len(chunks)).
		Msg("answer synthesized")

	return &Result{
		Answer:  out.Content,
		Context: contextText,
		Sources: sources,
	}, nil
}

func isSummaryRequest(query string) bool {
	lower := strings.ToLower(query)
	for _, w := range summaryWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// renderAnswerPrompt renders the grounding template via the Eino prompt
// component so prompt callbacks fire.
func renderAnswerPrompt(ctx context.Context, template, contextText, question string) ([]*schema.Message, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.UserMessage(template),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"context":  contextText,
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("render answer prompt: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return nil, fmt.Errorf("render answer prompt: empty result")
	}
	return msgs, nil
}
