// Package pipeline drives one task through a fixed five-stage path:
// input processing, agent execution, evaluation, memory update and
// aggregation. Each stage transforms the shared State and has one documented
// side effect on the memory store or the evaluation engine. A stage failure
// is fatal to the run: stages mutate shared stores non-idempotently, so no
// partial state is returned and no stage is retried.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/evaluation"
	"github.com/swarmforge/swarmforge/logging"
	"github.com/swarmforge/swarmforge/memory"
	"github.com/swarmforge/swarmforge/swarm"
)

const (
	// currentTaskKey is the short-term memory slot the input stage writes.
	currentTaskKey = "current_task"
	// taskCategory is the long-term category completed runs are filed under.
	taskCategory = "tasks"
	// primaryAgentKey holds the output the evaluation stage scores.
	primaryAgentKey = "primary_agent"
)

// defaultCriteria is the built-in criteria set the evaluation stage scores
// against.
var defaultCriteria = map[string]string{
	"relevance":    "Is it relevant?",
	"completeness": "Is it complete?",
}

type stage struct {
	name string
	fn   func(ctx context.Context, s *State) error
}

// Runner executes the five-stage pipeline. Run calls on one Runner are
// serialized, which keeps the count-derived long-term keys consistent for
// this Runner; several Runners sharing one memory.Store must coordinate key
// derivation themselves (the task_<n> scheme assumes a single writer for the
// "tasks" category).
type Runner struct {
	runMu sync.Mutex

	memory    *memory.Store
	evaluator *evaluation.Engine
	pool      *swarm.Pool
	logger    logging.Logger
}

// Options configure a Runner.
type Options struct {
	// Pool, when set, replaces the placeholder agent-execution stage with a
	// real fan-out across the pool's agents.
	Pool *swarm.Pool
	// Logger defaults to the NoOpLogger.
	Logger logging.Logger
}

// NewRunner constructs a Runner over the given stores. Nil arguments select
// fresh in-memory instances.
func NewRunner(store *memory.Store, evaluator *evaluation.Engine, optFns ...func(o *Options)) *Runner {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if store == nil {
		store = memory.NewStore()
	}
	if evaluator == nil {
		evaluator = evaluation.NewEngine()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Runner{
		memory:    store,
		evaluator: evaluator,
		pool:      opts.Pool,
		logger:    opts.Logger,
	}
}

// WithPool attaches an agent pool to the agent-execution stage.
func WithPool(pool *swarm.Pool) func(o *Options) {
	return func(o *Options) { o.Pool = pool }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// Memory exposes the backing store for the API surface.
func (r *Runner) Memory() *memory.Store { return r.memory }

// Evaluator exposes the backing evaluation engine for the API surface.
func (r *Runner) Evaluator() *evaluation.Engine { return r.evaluator }

func (r *Runner) stages() []stage {
	return []stage{
		{name: "process_input", fn: r.processInput},
		{name: "agent_execution", fn: r.agentExecution},
		{name: "evaluation", fn: r.evaluate},
		{name: "memory_update", fn: r.memoryUpdate},
		{name: "aggregate_results", fn: r.aggregateResults},
	}
}

// Run builds a fresh State and drives it through all five stages in order,
// synchronously. The terminal state has Status == StatusCompleted. Any stage
// error aborts the run and is returned wrapped with the stage name.
func (r *Runner) Run(ctx context.Context, task string) (*State, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	state := newState(task)
	for _, st := range r.stages() {
		if err := st.fn(ctx, state); err != nil {
			r.logger.Error("pipeline stage failed", "stage", st.name, "error", err)
			return nil, fmt.Errorf("pipeline stage %s: %w", st.name, err)
		}
		r.logger.Debug("pipeline stage completed", "stage", st.name, "status", string(state.Status))
	}
	return state, nil
}

// processInput appends the task turn to the conversation log and stores the
// task in short-term memory under a fixed key.
func (r *Runner) processInput(_ context.Context, s *State) error {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: s.Task, Timestamp: time.Now()})
	r.memory.StoreShortTerm(currentTaskKey, core.StringValue(s.Task), 0)
	s.Status = StatusInputProcessed
	return nil
}

// agentExecution produces the primary output. Without a pool it is the
// deterministic placeholder; with a pool attached it fans the task out and
// folds every agent's slot into the result map, taking the first successful
// result (in insertion order) as the primary output. Hierarchical pools
// return the coordinator apart from the workers; the coordinator folds in
// first, so its output leads.
func (r *Runner) agentExecution(ctx context.Context, s *State) error {
	if r.pool == nil {
		s.AgentResults[primaryAgentKey] = core.StringValue(fmt.Sprintf("Processing: %s...", prefix(s.Task, 50)))
		s.AgentResults["timestamp"] = core.StringValue(time.Now().Format(time.RFC3339))
		s.Status = StatusAgentsExecuted
		return nil
	}

	res, err := r.pool.Execute(ctx, s.Task)
	if err != nil {
		return err
	}

	primary := ""
	record := func(name string, slot swarm.AgentResult) {
		fields := map[string]core.Value{"status": core.StringValue(slot.Status)}
		if slot.Error != "" {
			fields["error"] = core.StringValue(slot.Error)
		} else {
			fields["result"] = core.StringValue(slot.Result)
		}
		s.AgentResults[name] = core.MapValue(fields)
		if primary == "" && slot.Status == swarm.StatusSuccess {
			primary = slot.Result
		}
	}

	if c := res.Coordinator; c != nil {
		slot := swarm.AgentResult{Status: swarm.StatusSuccess, Result: c.Result}
		if c.Error != "" {
			slot = swarm.AgentResult{Status: swarm.StatusFailed, Error: c.Error}
		}
		record(c.Agent, slot)
	}
	slots := res.Agents
	if slots == nil {
		slots = res.Workers
	}
	for _, name := range r.pool.AgentNames() {
		if slot, ok := slots[name]; ok {
			record(name, slot)
		}
	}
	s.AgentResults[primaryAgentKey] = core.StringValue(primary)
	s.AgentResults["timestamp"] = core.StringValue(time.Now().Format(time.RFC3339))
	s.Status = StatusAgentsExecuted
	return nil
}

// evaluate scores the primary output against the built-in criteria set and
// stores the evaluation both in the engine's history and on the state.
func (r *Runner) evaluate(_ context.Context, s *State) error {
	output := ""
	if v, ok := s.AgentResults[primaryAgentKey]; ok {
		output = v.Text()
	}
	eval := r.evaluator.EvaluateOutput(output, defaultCriteria)
	s.EvaluationResults = &eval
	s.Status = StatusEvaluated
	return nil
}

// memoryUpdate persists the run under the "tasks" category with a key
// derived from the number of entries already filed there, then snapshots
// both memory tiers into the state.
func (r *Runner) memoryUpdate(_ context.Context, s *State) error {
	key := fmt.Sprintf("task_%d", r.memory.CategorySize(taskCategory))

	scores := make(map[string]core.Value, len(s.EvaluationResults.CriteriaScores))
	for name, score := range s.EvaluationResults.CriteriaScores {
		scores[name] = core.NumberValue(score)
	}
	record := core.MapValue(map[string]core.Value{
		"task":    core.StringValue(s.Task),
		"results": core.MapValue(s.AgentResults),
		"evaluation": core.MapValue(map[string]core.Value{
			"overall_score":   core.NumberValue(s.EvaluationResults.OverallScore),
			"criteria_scores": core.MapValue(scores),
		}),
	})
	r.memory.StoreLongTerm(key, record, taskCategory)

	s.ShortTermMemory = r.memory.ShortTermSnapshot()
	s.LongTermMemory = r.memory.LongTermSnapshot()
	s.Status = StatusMemoryUpdated
	return nil
}

// aggregateResults appends the completion turn and moves the state to its
// terminal status.
func (r *Runner) aggregateResults(_ context.Context, s *State) error {
	s.Messages = append(s.Messages, Message{
		Role:      RoleAssistant,
		Content:   fmt.Sprintf("Task completed: %s...", prefix(s.Task, 50)),
		Timestamp: time.Now(),
	})
	s.Status = StatusCompleted
	return nil
}

// prefix truncates s to at most n bytes, backing off to a rune boundary so
// a multi-byte rune is never split.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
