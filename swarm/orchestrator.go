package swarm

import (
	"context"
	"sync"
	"time"

	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/logging"
	"github.com/swarmforge/swarmforge/model"
)

// Record is one completed task execution in the orchestrator's history.
// Records are immutable once appended.
type Record struct {
	ID        string        `json:"id"`
	Pool      string        `json:"pool"`
	Task      string        `json:"task"`
	Result    Result        `json:"result"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// OrchestratorStats aggregates pool statistics across the whole swarm.
type OrchestratorStats struct {
	TotalPools      int                  `json:"total_pools"`
	TotalExecutions int                  `json:"total_executions"`
	Pools           map[string]PoolStats `json:"pools"`
}

// Orchestrator is the top-level coordination object: it owns named pools,
// routes task requests to them and keeps an append-only execution history.
// One instance per running system. Safe for concurrent use.
type Orchestrator struct {
	mu      sync.RWMutex
	pools   map[string]*Pool
	history []Record

	gen    model.Generator
	logger logging.Logger
}

// Options configure an Orchestrator.
type Options struct {
	// Generator is handed to every pool (and through it, every agent). Nil
	// selects deterministic placeholder execution.
	Generator model.Generator
	// Logger defaults to the NoOpLogger.
	Logger logging.Logger
}

// NewOrchestrator constructs an Orchestrator with optional overrides.
func NewOrchestrator(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Orchestrator{
		pools:  make(map[string]*Pool),
		gen:    opts.Generator,
		logger: opts.Logger,
	}
}

// WithGenerator sets the model collaborator used by all pools.
func WithGenerator(gen model.Generator) func(o *Options) {
	return func(o *Options) { o.Generator = gen }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// CreatePool registers and returns a new empty pool under the given name.
// Registering an existing name replaces that pool (last write wins); this is
// intentional simplicity, not validated away.
func (o *Orchestrator) CreatePool(name string) *Pool {
	pool := NewPool(o.gen, o.logger)
	o.mu.Lock()
	o.pools[name] = pool
	o.mu.Unlock()
	o.logger.Info("pool created", "pool", name)
	return pool
}

// Pool looks up a registered pool by name.
func (o *Orchestrator) Pool(name string) (*Pool, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	pool, ok := o.pools[name]
	return pool, ok
}

// PoolNames returns the registered pool names in unspecified order.
func (o *Orchestrator) PoolNames() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.pools))
	for name := range o.pools {
		names = append(names, name)
	}
	return names
}

// ExecuteTask routes the task to the named pool, measures the wall-clock
// duration and appends an immutable record to the execution history. An
// unknown pool name fails with NotFoundError and leaves the history
// untouched.
func (o *Orchestrator) ExecuteTask(ctx context.Context, poolName, task string) (Record, error) {
	pool, ok := o.Pool(poolName)
	if !ok {
		return Record{}, core.NewNotFoundError("pool", poolName)
	}

	start := time.Now()
	result, err := pool.Execute(ctx, task)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		ID:        core.NewID(),
		Pool:      poolName,
		Task:      task,
		Result:    result,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}

	o.mu.Lock()
	o.history = append(o.history, record)
	o.mu.Unlock()

	o.logger.Info("task executed", "pool", poolName, "mode", result.Mode.String(), "duration", record.Duration)
	return record, nil
}

// History returns a copy of the execution history, oldest first. A limit of
// zero or less returns everything; otherwise the most recent limit records.
func (o *Orchestrator) History(limit int) []Record {
	o.mu.RLock()
	defer o.mu.RUnlock()
	records := o.history
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	cp := make([]Record, len(records))
	copy(cp, records)
	return cp
}

// GetOrchestrationStats aggregates statistics across every pool.
func (o *Orchestrator) GetOrchestrationStats() OrchestratorStats {
	o.mu.RLock()
	pools := make(map[string]*Pool, len(o.pools))
	for name, pool := range o.pools {
		pools[name] = pool
	}
	executions := len(o.history)
	o.mu.RUnlock()

	stats := OrchestratorStats{
		TotalPools:      len(pools),
		TotalExecutions: executions,
		Pools:           make(map[string]PoolStats, len(pools)),
	}
	for name, pool := range pools {
		stats.Pools[name] = pool.GetPoolStats()
	}
	return stats
}
