package swarm

import (
	"context"
	"sync"

	"github.com/swarmforge/swarmforge/agent"
	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/logging"
	"github.com/swarmforge/swarmforge/model"
)

// Mode governs how a pool fans a task out across its agents.
type Mode int

const (
	// ModeSequential runs agents one at a time in insertion order.
	ModeSequential Mode = iota
	// ModeParallel runs all agents concurrently and joins on completion.
	ModeParallel
	// ModeHierarchical runs a coordinator first, then the remaining agents
	// concurrently.
	ModeHierarchical
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModeParallel:
		return "parallel"
	case ModeHierarchical:
		return "hierarchical"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name to its Mode. Unknown names yield a ConfigError.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "sequential":
		return ModeSequential, nil
	case "parallel":
		return ModeParallel, nil
	case "hierarchical":
		return ModeHierarchical, nil
	default:
		return 0, core.NewConfigError("unknown execution mode %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler so modes serialize by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Result statuses inside a pool result map.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// coordinatorPrefix marks the coordinator's task as a coordination request.
const coordinatorPrefix = "Coordinate: "

// AgentResult is one agent's slot in a pool result. A failed agent records
// its error here instead of aborting the pool call.
type AgentResult struct {
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CoordinatorResult captures the coordinator phase of hierarchical execution.
type CoordinatorResult struct {
	Agent  string `json:"agent"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of one pool execution. Agents is populated by
// sequential and parallel mode; Coordinator and Workers by hierarchical mode.
// Partial failure lives inside the map slots, never at the top level.
type Result struct {
	Mode        Mode                   `json:"mode"`
	Agents      map[string]AgentResult `json:"agents,omitempty"`
	Coordinator *CoordinatorResult     `json:"coordinator,omitempty"`
	Workers     map[string]AgentResult `json:"workers,omitempty"`
}

// Pool owns a named set of agents sharing one execution mode. Agents iterate
// in insertion order wherever ordering is observable (sequential mode, the
// default coordinator choice). All methods are safe for concurrent use.
type Pool struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
	order  []string
	mode   Mode

	gen    model.Generator
	logger logging.Logger
}

// NewPool constructs an empty pool in sequential mode. gen is handed to every
// agent added later; it may be nil for placeholder execution.
func NewPool(gen model.Generator, logger logging.Logger) *Pool {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Pool{
		agents: make(map[string]*agent.Agent),
		mode:   ModeSequential,
		gen:    gen,
		logger: logger,
	}
}

// AddAgent creates an agent from cfg and registers it. Re-adding a name
// replaces the previous agent while keeping its original position in the
// iteration order.
func (p *Pool) AddAgent(cfg agent.Config) (*agent.Agent, error) {
	a, err := agent.New(cfg, p.gen, p.logger)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.agents[cfg.Name]; !exists {
		p.order = append(p.order, cfg.Name)
	}
	p.agents[cfg.Name] = a
	p.logger.Info("agent added to pool", "agent", cfg.Name, "role", cfg.Role.String())
	return a, nil
}

// RemoveAgent unregisters an agent. Removing an unknown name is a no-op.
func (p *Pool) RemoveAgent(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.agents[name]; !ok {
		return
	}
	delete(p.agents, name)
	for i, n := range p.order {
		if n == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Agent looks up a registered agent by name.
func (p *Pool) Agent(name string) (*agent.Agent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.agents[name]
	return a, ok
}

// AgentNames returns the agent names in insertion order.
func (p *Pool) AgentNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cp := make([]string, len(p.order))
	copy(cp, p.order)
	return cp
}

// Size returns the number of registered agents.
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.agents)
}

// SetMode switches the execution mode for all subsequent Execute calls.
func (p *Pool) SetMode(mode Mode) error {
	switch mode {
	case ModeSequential, ModeParallel, ModeHierarchical:
	default:
		return core.NewConfigError("unknown execution mode %d", int(mode))
	}
	p.mu.Lock()
	p.mode = mode
	p.mu.Unlock()
	return nil
}

// Mode returns the active execution mode.
func (p *Pool) Mode() Mode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// snapshot returns the agents and their order at one instant so an execution
// is unaffected by concurrent add/remove.
func (p *Pool) snapshot() ([]string, map[string]*agent.Agent, Mode) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	order := make([]string, len(p.order))
	copy(order, p.order)
	agents := make(map[string]*agent.Agent, len(p.agents))
	for name, a := range p.agents {
		agents[name] = a
	}
	return order, agents, p.mode
}

// Execute fans the task out according to the active mode. The mode switch is
// exhaustive over the closed Mode set; the default arm guards against a
// corrupted mode value with a ConfigError.
func (p *Pool) Execute(ctx context.Context, task string) (Result, error) {
	switch p.Mode() {
	case ModeSequential:
		return p.ExecuteSequential(ctx, task)
	case ModeParallel:
		return p.ExecuteParallel(ctx, task)
	case ModeHierarchical:
		return p.ExecuteHierarchical(ctx, task, "")
	default:
		return Result{}, core.NewConfigError("unknown execution mode %d", int(p.Mode()))
	}
}

// ExecuteSequential runs every agent one at a time in insertion order. A
// failing agent is recorded in its own slot and does not stop the iteration.
func (p *Pool) ExecuteSequential(ctx context.Context, task string) (Result, error) {
	order, agents, _ := p.snapshot()
	results := make(map[string]AgentResult, len(order))
	for _, name := range order {
		results[name] = runAgent(ctx, agents[name], task)
	}
	return Result{Mode: ModeSequential, Agents: results}, nil
}

// ExecuteParallel runs all agents concurrently and joins on all of them
// before returning. One agent's failure never affects the others; each slot
// carries its own status.
func (p *Pool) ExecuteParallel(ctx context.Context, task string) (Result, error) {
	order, agents, _ := p.snapshot()

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]AgentResult, len(order))

	for _, name := range order {
		wg.Add(1)
		go func(name string, a *agent.Agent) {
			defer wg.Done()
			slot := runAgent(ctx, a, task)
			mu.Lock()
			results[name] = slot
			mu.Unlock()
		}(name, agents[name])
	}
	wg.Wait()

	return Result{Mode: ModeParallel, Agents: results}, nil
}

// ExecuteHierarchical runs the coordinator first, alone, on a task marked as
// a coordination request, then all remaining agents concurrently on the
// original task. When coordinator is empty the first agent in insertion
// order takes the role. An empty pool yields an empty result, not an error.
// Naming an unknown coordinator is a NotFoundError.
func (p *Pool) ExecuteHierarchical(ctx context.Context, task, coordinator string) (Result, error) {
	order, agents, _ := p.snapshot()
	result := Result{Mode: ModeHierarchical}
	if len(order) == 0 {
		return result, nil
	}

	if coordinator == "" {
		coordinator = order[0]
	}
	coordAgent, ok := agents[coordinator]
	if !ok {
		return Result{}, core.NewNotFoundError("agent", coordinator)
	}

	// Coordinator phase: strictly ordered before any worker starts.
	coordResult := &CoordinatorResult{Agent: coordinator}
	if out, err := coordAgent.Execute(ctx, coordinatorPrefix+task); err != nil {
		coordResult.Error = err.Error()
	} else {
		coordResult.Result = out
	}
	result.Coordinator = coordResult

	// Worker phase: everyone else, concurrently, failures isolated per slot.
	var wg sync.WaitGroup
	var mu sync.Mutex
	workers := make(map[string]AgentResult)
	for _, name := range order {
		if name == coordinator {
			continue
		}
		wg.Add(1)
		go func(name string, a *agent.Agent) {
			defer wg.Done()
			slot := runAgent(ctx, a, task)
			mu.Lock()
			workers[name] = slot
			mu.Unlock()
		}(name, agents[name])
	}
	wg.Wait()

	result.Workers = workers
	return result, nil
}

// GetPoolStats aggregates per-agent statistics in insertion order.
func (p *Pool) GetPoolStats() PoolStats {
	order, agents, mode := p.snapshot()
	stats := PoolStats{
		TotalAgents: len(order),
		Mode:        mode,
		Agents:      make(map[string]agent.Stats, len(order)),
	}
	for _, name := range order {
		stats.Agents[name] = agents[name].GetExecutionStats()
	}
	return stats
}

// PoolStats summarizes a pool and every agent in it.
type PoolStats struct {
	TotalAgents int                    `json:"total_agents"`
	Mode        Mode                   `json:"execution_mode"`
	Agents      map[string]agent.Stats `json:"agents"`
}

// runAgent folds one agent execution into its result slot, converting an
// error into a failed slot rather than letting it escape.
func runAgent(ctx context.Context, a *agent.Agent, task string) AgentResult {
	out, err := a.Execute(ctx, task)
	if err != nil {
		return AgentResult{Status: StatusFailed, Error: err.Error()}
	}
	return AgentResult{Status: StatusSuccess, Result: out}
}
