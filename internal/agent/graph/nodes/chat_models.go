package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/pollenai/assistant/internal/agent/model"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey     string
	BaseURL    string
	IntentCfg  *model.IntentModelConfig
	PlannerCfg *model.PlannerModelConfig
	AnswerCfg  *model.AnswerModelConfig
}

// ChatModels holds the intent classifier, planner and answer chat models,
// plus the shared genai client so the embedder can reuse it.
type ChatModels struct {
	Intent  *gemini.ChatModel
	Planner *gemini.ChatModel
	Answer  *gemini.ChatModel
	Client  *genai.Client

	IntentModelName  string
	PlannerModelName string
	AnswerModelName  string
}

// NewChatModels creates all three chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	intentModel, err := newGeminiModel(ctx, client, config.IntentCfg.Model, config.IntentCfg.Temperature, config.IntentCfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating intent model: %w", err)
	}

	plannerModel, err := newGeminiModel(ctx, client, config.PlannerCfg.Model, config.PlannerCfg.Temperature, config.PlannerCfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating planner model: %w", err)
	}

	answerModel, err := newGeminiModel(ctx, client, config.AnswerCfg.Model, config.AnswerCfg.Temperature, config.AnswerCfg.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return &ChatModels{
		Intent:           intentModel,
		Planner:          plannerModel,
		Answer:           answerModel,
		Client:           client,
		IntentModelName:  config.IntentCfg.Model,
		PlannerModelName: config.PlannerCfg.Model,
		AnswerModelName:  config.AnswerCfg.Model,
	}, nil
}

func newGeminiModel(ctx context.Context, client *genai.Client, name string, temperature float32, maxTokens int) (*gemini.ChatModel, error) {
	m, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       name,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", name).Msg("Error creating chat model")
		return nil, err
	}
	return m, nil
}
