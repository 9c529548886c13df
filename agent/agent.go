// Package agent implements the individual execution unit of a swarm: a named,
// stateful worker that runs one task at a time against a language-model
// collaborator, records every attempt in an append-only log and keeps a small
// private memory.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/logging"
	"github.com/swarmforge/swarmforge/model"
)

// State tracks the lifecycle of an agent between executions.
type State int

const (
	// StateIdle means the agent is ready to accept a task.
	StateIdle State = iota
	// StateExecuting means a task is in flight.
	StateExecuting
	// StateError means the last execution failed.
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExecuting:
		return "executing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Execution log status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// LogEntry records a single execution attempt. Exactly one entry is appended
// per Execute call, whatever the outcome.
type LogEntry struct {
	Task      string        `json:"task"`
	Result    string        `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// Stats is the derived, read-only execution summary of an agent.
type Stats struct {
	AgentName       string        `json:"agent_name"`
	TotalExecutions int           `json:"total_executions"`
	Successful      int           `json:"successful"`
	Failed          int           `json:"failed"`
	TotalDuration   time.Duration `json:"total_duration"`
	AvgDuration     time.Duration `json:"avg_duration"`
}

type memoryEntry struct {
	value     core.Value
	timestamp time.Time
}

// Agent executes one task at a time. Execute calls on the same Agent are
// serialized internally; the execution log, memory and state are owned
// exclusively by the agent and only mutated under its lock.
type Agent struct {
	config Config
	gen    model.Generator
	logger logging.Logger

	execMu sync.Mutex // serializes Execute; state transitions are not reentrant

	mu     sync.RWMutex
	state  State
	log    []LogEntry
	memory map[string]memoryEntry
}

// New constructs an Agent from a validated config. gen may be nil, in which
// case Execute produces a deterministic placeholder result instead of calling
// out to a model; the log and state contract is identical either way.
func New(cfg Config, gen model.Generator, logger logging.Logger) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Agent{
		config: cfg,
		gen:    gen,
		logger: logger,
		state:  StateIdle,
		memory: make(map[string]memoryEntry),
	}, nil
}

// Config returns the agent's immutable descriptor.
func (a *Agent) Config() Config { return a.config }

// Name returns the agent's name.
func (a *Agent) Name() string { return a.config.Name }

// State reports the current lifecycle state.
func (a *Agent) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Execute runs one task to completion within the configured timeout.
//
// Side effects: the state transitions idle -> executing -> idle (or -> error
// on failure) and exactly one LogEntry is appended, recording the wall-clock
// duration. An empty task is allowed and yields a degenerate result, not an
// error. On failure the typed error (ModelError or TimeoutError) propagates
// to the caller; the pool layer isolates it from sibling agents.
func (a *Agent) Execute(ctx context.Context, task string) (string, error) {
	a.execMu.Lock()
	defer a.execMu.Unlock()

	a.setState(StateExecuting)
	start := time.Now()

	result, err := a.generate(ctx, task)
	duration := time.Since(start)

	if err != nil {
		a.mu.Lock()
		a.log = append(a.log, LogEntry{
			Task:      task,
			Error:     err.Error(),
			Duration:  duration,
			Status:    StatusFailed,
			Timestamp: time.Now(),
		})
		a.state = StateError
		a.mu.Unlock()
		a.logger.Error("agent execution failed", "agent", a.config.Name, "error", err)
		return "", err
	}

	a.mu.Lock()
	a.log = append(a.log, LogEntry{
		Task:      task,
		Result:    result,
		Duration:  duration,
		Status:    StatusCompleted,
		Timestamp: time.Now(),
	})
	a.state = StateIdle
	a.mu.Unlock()

	a.logger.Debug("agent execution completed", "agent", a.config.Name, "duration", duration)
	return result, nil
}

// generate runs the collaborator call under the configured budget. The
// timeout is enforced here even against a generator that ignores its context,
// so a hung collaborator degrades into a failed log entry, never a stuck pool.
func (a *Agent) generate(parent context.Context, task string) (string, error) {
	ctx, cancel := context.WithTimeout(parent, a.config.Timeout)
	defer cancel()

	if a.gen == nil {
		return fmt.Sprintf("Agent %s (%s) processed: %s", a.config.Name, a.config.Role, prefix(task, 100)), nil
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := a.gen.Generate(ctx, a.buildPrompt(task))
		done <- outcome{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			return "", &core.TimeoutError{Agent: a.config.Name, Budget: a.config.Timeout}
		}
		return "", ctx.Err()
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) && parent.Err() == nil {
				return "", &core.TimeoutError{Agent: a.config.Name, Budget: a.config.Timeout}
			}
			var me *core.ModelError
			if errors.As(out.err, &me) {
				return "", out.err
			}
			return "", core.NewModelError("", out.err.Error(), out.err)
		}
		return out.text, nil
	}
}

func (a *Agent) buildPrompt(task string) string {
	return fmt.Sprintf("You are %s, a %s agent. Task: %s", a.config.Name, a.config.Role, task)
}

// StoreMemory writes a key/value pair into the agent's private memory,
// overwriting any previous value.
func (a *Agent) StoreMemory(key string, value core.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory[key] = memoryEntry{value: value, timestamp: time.Now()}
}

// RetrieveMemory looks up a key in private memory. A miss is reported via
// ok, not an error.
func (a *Agent) RetrieveMemory(key string) (core.Value, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.memory[key]
	if !ok {
		return core.Null(), false
	}
	return entry.value, true
}

// ExecutionLog returns a copy of the append-only execution log.
func (a *Agent) ExecutionLog() []LogEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cp := make([]LogEntry, len(a.log))
	copy(cp, a.log)
	return cp
}

// GetExecutionStats derives counters and the average duration from the log.
// The average is zero for an empty log.
func (a *Agent) GetExecutionStats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{AgentName: a.config.Name, TotalExecutions: len(a.log)}
	for _, entry := range a.log {
		switch entry.Status {
		case StatusCompleted:
			stats.Successful++
		case StatusFailed:
			stats.Failed++
		}
		stats.TotalDuration += entry.Duration
	}
	if len(a.log) > 0 {
		stats.AvgDuration = stats.TotalDuration / time.Duration(len(a.log))
	}
	return stats
}

func (a *Agent) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
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
