// Package swarmforge provides a high-level façade over the orchestration
// primitives (agent pools, the task pipeline, the two-tier memory store, the
// evaluation engine and the tool registry) enabling rapid construction of
// multi-agent workflows. Most applications interact with this package by:
//  1. Creating a SwarmForge via New() or NewFromConfig()
//  2. Creating one or more pools and adding agents to them
//  3. Executing tasks through a pool (ExecuteTask) or through the
//     five-stage pipeline (RunPipeline)
//
// The façade delegates pool execution to swarm.Orchestrator and pipeline
// runs to pipeline.Runner while keeping setup concise. All defaults are
// in-memory and safe for local development and testing.
package swarmforge

import (
	"context"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"

	"github.com/swarmforge/swarmforge/config"
	"github.com/swarmforge/swarmforge/evaluation"
	"github.com/swarmforge/swarmforge/logging"
	"github.com/swarmforge/swarmforge/memory"
	"github.com/swarmforge/swarmforge/model"
	"github.com/swarmforge/swarmforge/model/anthropic"
	"github.com/swarmforge/swarmforge/model/openai"
	"github.com/swarmforge/swarmforge/pipeline"
	"github.com/swarmforge/swarmforge/swarm"
	"github.com/swarmforge/swarmforge/tool"
)

// Options configures the SwarmForge instance.
type Options struct {
	// Generator backs text generation for every agent created through this
	// instance. Nil selects the deterministic placeholder output.
	Generator model.Generator

	// Stores (default to fresh in-memory instances if not provided).
	MemoryStore *memory.Store
	Evaluator   *evaluation.Engine

	// Tools defaults to a registry with all builtin tools over MemoryStore
	// and no search backend.
	Tools *tool.Registry

	// PipelinePool, when set, is attached to the pipeline's agent-execution
	// stage. Independent of the pools managed by the orchestrator.
	PipelinePool *swarm.Pool

	// Logger defaults to the NoOp logger if nil.
	Logger logging.Logger
}

// SwarmForge is the high-level façade aggregating the orchestrator, the
// pipeline runner and the shared stores.
type SwarmForge struct {
	opts         Options
	orchestrator *swarm.Orchestrator
	runner       *pipeline.Runner
}

// New creates a SwarmForge instance with optional overrides. Any unset store
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *SwarmForge {
	opts := Options{
		MemoryStore: memory.NewStore(),
		Evaluator:   evaluation.NewEngine(),
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewStore()
	}
	if opts.Evaluator == nil {
		opts.Evaluator = evaluation.NewEngine()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Tools == nil {
		opts.Tools = tool.DefaultRegistry(nil, "", opts.MemoryStore)
	}

	orchestrator := swarm.NewOrchestrator(
		swarm.WithGenerator(opts.Generator),
		swarm.WithLogger(opts.Logger),
	)
	runner := pipeline.NewRunner(opts.MemoryStore, opts.Evaluator,
		pipeline.WithPool(opts.PipelinePool),
		pipeline.WithLogger(opts.Logger),
	)

	return &SwarmForge{opts: opts, orchestrator: orchestrator, runner: runner}
}

// NewFromConfig builds a SwarmForge wired according to the loaded
// configuration: logger, model provider, search backend and tool registry.
func NewFromConfig(cfg *config.Config) (*SwarmForge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	var gen model.Generator
	switch cfg.Model.Provider {
	case config.ProviderOpenAI:
		gen = openai.New(func(o *openai.Options) {
			o.Model = openaisdk.ChatModel(cfg.Model.OpenAIModel)
			o.APIKey = cfg.Model.OpenAIAPIKey
		})
	case config.ProviderAnthropic:
		gen = anthropic.New(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model.AnthropicModel)
			o.APIKey = cfg.Model.AnthropicAPIKey
		})
	}

	store := memory.NewStore()
	var search tool.SearchClient
	if cfg.Tools.TavilyAPIKey != "" {
		search = tool.NewTavilyClient(cfg.Tools.TavilyAPIKey)
	}

	registry := tool.NewRegistry()
	registry.Register(tool.NewWebSearchTool(search, func(o *tool.WebSearchOptions) {
		o.DefaultMaxResults = cfg.Tools.SearchMaxResults
	}))
	if cfg.Tools.CodeExecutionAllow {
		registry.Register(tool.NewCodeExecutionTool(func(o *tool.CodeExecutionOptions) {
			o.Timeout = cfg.Tools.CodeTimeout
		}))
	}
	registry.Register(tool.NewFileOperationsTool(cfg.Tools.FileRoot))
	registry.Register(tool.NewDataAnalysisTool())
	registry.Register(tool.NewMemoryTool(store))

	return New(func(o *Options) {
		o.Generator = gen
		o.MemoryStore = store
		o.Tools = registry
		o.Logger = logger
	}), nil
}

// CreatePool registers an empty named pool wired with this instance's
// generator and logger, replacing any pool with the same name.
func (f *SwarmForge) CreatePool(name string) *swarm.Pool {
	return f.orchestrator.CreatePool(name)
}

// Pool returns a registered pool by name.
func (f *SwarmForge) Pool(name string) (*swarm.Pool, bool) {
	return f.orchestrator.Pool(name)
}

// ExecuteTask runs a task through the named pool and records it in the
// orchestration history.
func (f *SwarmForge) ExecuteTask(ctx context.Context, pool, task string) (swarm.Record, error) {
	return f.orchestrator.ExecuteTask(ctx, pool, task)
}

// RunPipeline drives a task through the five-stage pipeline.
func (f *SwarmForge) RunPipeline(ctx context.Context, task string) (*pipeline.State, error) {
	return f.runner.Run(ctx, task)
}

// Orchestrator exposes the pool orchestrator.
func (f *SwarmForge) Orchestrator() *swarm.Orchestrator { return f.orchestrator }

// Pipeline exposes the pipeline runner.
func (f *SwarmForge) Pipeline() *pipeline.Runner { return f.runner }

// Memory exposes the shared memory store.
func (f *SwarmForge) Memory() *memory.Store { return f.opts.MemoryStore }

// Evaluator exposes the shared evaluation engine.
func (f *SwarmForge) Evaluator() *evaluation.Engine { return f.opts.Evaluator }

// Tools exposes the tool registry.
func (f *SwarmForge) Tools() *tool.Registry { return f.opts.Tools }

// Generator exposes the configured text generator (nil in placeholder mode).
func (f *SwarmForge) Generator() model.Generator { return f.opts.Generator }

// Logger exposes the configured logger.
func (f *SwarmForge) Logger() logging.Logger { return f.opts.Logger }
