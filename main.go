package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/pollenai/assistant/internal/agent/booking"
	"github.com/pollenai/assistant/internal/agent/graph"
	"github.com/pollenai/assistant/internal/agent/graph/nodes"
	"github.com/pollenai/assistant/internal/agent/graph/tools"
	"github.com/pollenai/assistant/internal/agent/ingest"
	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/rag"
	"github.com/pollenai/assistant/internal/agent/repo"
	"github.com/pollenai/assistant/internal/agent/timeparse"
	"github.com/pollenai/assistant/internal/core"
	"github.com/pollenai/assistant/internal/handlers"
	"github.com/pollenai/assistant/internal/server"
	logx "github.com/pollenai/assistant/pkg/logger"
	pkgredis "github.com/pollenai/assistant/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis      pkgredis.Config
	ServerAddr string `envconfig:"SERVER_ADDR" default:":8080"`
	Env        string `envconfig:"APP_ENV" default:"development"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Intent       model.IntentModelConfig
	Planner      model.PlannerModelConfig
	Answer       model.AnswerModelConfig
	Conversation model.ConversationConfig
	Extractor    model.ExtractorConfig
	Booking      model.BookingConfig
	Index        model.IndexConfig
	Ingest       model.IngestConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Env)})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	chatLog := repo.NewRedisChatLog(rdb)
	credStore := repo.NewRedisCredentialStore(rdb)

	extractor, err := timeparse.NewExtractor(cfg.Extractor)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise datetime extractor")
	}

	executor := booking.NewExecutor(cfg.Booking, credStore)

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		IntentCfg:  &cfg.Intent,
		PlannerCfg: &cfg.Planner,
		AnswerCfg:  &cfg.Answer,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise chat models")
	}

	embedder, err := rag.NewGeminiEmbedder(cms.Client, cfg.Index.EmbedModel, cfg.Index.Dimension)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise embedder")
	}

	index, err := rag.NewQdrantIndex(cfg.Index, embedder)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise vector index")
	}

	runner, err := graph.BuildResponseGraph(ctx, graph.Config{
		ChatModels:   cms,
		AnswerTopK:   cfg.Answer.TopK,
		Conversation: cfg.Conversation,
		ChatLog:      chatLog,
		Index:        index,
		ToolDeps: tools.Deps{
			Booking:   executor,
			Extractor: extractor,
		},
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build response graph")
	}

	ingestSvc := ingest.NewService(ingest.NewChunker(cfg.Ingest), index)

	srv := server.NewServer(cfg.ServerAddr,
		handlers.NewAskHandler(runner),
		handlers.NewIngestHandler(ingestSvc),
		handlers.NewCredentialsHandler(credStore),
	)

	go func() {
		logx.Info().Str("addr", cfg.ServerAddr).Msg("server starting")
		if err := srv.Start(); err != nil {
			logx.Error().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
}
