package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/pollenai/assistant/internal/agent/graph/nodes"
	"github.com/pollenai/assistant/internal/agent/graph/observers"
	"github.com/pollenai/assistant/internal/agent/graph/tools"
	"github.com/pollenai/assistant/internal/agent/model"
	"github.com/pollenai/assistant/internal/agent/rag"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.Answer, error)
}

// Config holds everything needed to compose the full response graph
// end-to-end. ChatModels and Index are built by the caller so the single
// genai client can be shared with the embedder.
type Config struct {
	ChatModels   *nodes.ChatModels
	AnswerTopK   int
	Conversation model.ConversationConfig
	ChatLog      nodes.ChatHistory
	Index        rag.Index
	ToolDeps     tools.Deps
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels *nodes.ChatModels
	ChatLog    nodes.ChatHistory
	Answerer   nodes.KnowledgeAnswerer
	ToolDeps   tools.Deps
	MaxTurns   int
}

// GraphBuilder handles the construction of the assistant graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.Answer]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.Answer]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.Answer, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildResponseGraph composes the answerer, builds the graph, and returns a
// Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ChatModels == nil {
		return nil, fmt.Errorf("chat models are nil")
	}
	if cfg.ChatLog == nil {
		return nil, fmt.Errorf("chat log is nil")
	}
	if cfg.Index == nil {
		return nil, fmt.Errorf("index is nil")
	}

	answerer := rag.NewAnswerer(cfg.Index, cfg.ChatModels.Answer, cfg.AnswerTopK)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels: cfg.ChatModels,
		ChatLog:    cfg.ChatLog,
		Answerer:   answerer,
		ToolDeps:   cfg.ToolDeps,
		MaxTurns:   cfg.Conversation.History.MaxTurns,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Response graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled assistant graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.Answer], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Intent == nil || config.ChatModels.Planner == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.ChatLog == nil {
		return nil, fmt.Errorf("chat log is nil")
	}
	if config.Answerer == nil {
		return nil, fmt.Errorf("answerer is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.Answer](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeIntentConverter,
		nodes.NewIntentConverterNode(),
		compose.WithStatePreHandler(nodes.NewIntentConverterPreHandler(b.config.ToolDeps.Extractor)),
	)

	b.graph.AddChatModelNode(nodes.NodeIntentChatModel,
		b.config.ChatModels.Intent,
		compose.WithStatePostHandler(nodes.NewChatModelCostPostHandler(nodes.NodeIntentChatModel, b.config.ChatModels.IntentModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeIntentParser,
		nodes.NewIntentParserNode(),
		compose.WithStatePostHandler(nodes.NewIntentParserPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodePlannerAssembler,
		nodes.NewPlannerAssemblerNode(b.config.ChatLog, b.config.ToolDeps, b.config.MaxTurns),
	)

	b.graph.AddChatModelNode(nodes.NodePlannerChatModel,
		b.config.ChatModels.Planner,
		compose.WithStatePostHandler(nodes.NewChatModelCostPostHandler(nodes.NodePlannerChatModel, b.config.ChatModels.PlannerModelName)),
	)

	dispatcher := nodes.NewDispatcher(b.config.ToolDeps, b.config.ChatLog, b.config.Answerer)
	b.graph.AddLambdaNode(nodes.NodeToolDispatch,
		nodes.NewToolDispatchNode(dispatcher),
	)

	b.graph.AddLambdaNode(nodes.NodeKnowledgeAnswerer,
		nodes.NewKnowledgeAnswererNode(b.config.Answerer, b.config.ChatLog),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeIntentConverter},
		{nodes.NodeIntentConverter, nodes.NodeIntentChatModel},
		{nodes.NodeIntentChatModel, nodes.NodeIntentParser},
		{nodes.NodePlannerAssembler, nodes.NodePlannerChatModel},
		{nodes.NodePlannerChatModel, nodes.NodeToolDispatch},
		{nodes.NodeToolDispatch, compose.END},
		{nodes.NodeKnowledgeAnswerer, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the intent routing branch
func (b *GraphBuilder) addBranches() error {
	intentBranch := compose.NewGraphBranch(
		nodes.NewIntentBranchCondition(),
		map[string]bool{
			nodes.NodePlannerAssembler:  true,
			nodes.NodeKnowledgeAnswerer: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeIntentParser, intentBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding intent branch")
		return fmt.Errorf("error adding intent branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.Answer], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
