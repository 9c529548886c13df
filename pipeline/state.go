package pipeline

import (
	"time"

	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/evaluation"
)

// Status is the pipeline state machine position. A run moves strictly
// forward through these values; there is no branching and no retry.
type Status string

const (
	// StatusInitialized is the fresh state before any stage has run.
	StatusInitialized Status = "initialized"
	// StatusInputProcessed follows the input-processing stage.
	StatusInputProcessed Status = "input_processed"
	// StatusAgentsExecuted follows the agent-execution stage.
	StatusAgentsExecuted Status = "agents_executed"
	// StatusEvaluated follows the evaluation stage.
	StatusEvaluated Status = "evaluated"
	// StatusMemoryUpdated follows the memory-update stage.
	StatusMemoryUpdated Status = "memory_updated"
	// StatusCompleted is the terminal state.
	StatusCompleted Status = "completed"
)

// Message roles used in the state's conversation log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn in the pipeline's conversation log.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the shared object threaded through all five stages of a run. It
// is created fresh per run and never shared across runs. Messages and the
// result maps are append-only from the stages' point of view.
type State struct {
	Task              string                           `json:"task"`
	Messages          []Message                        `json:"messages"`
	AgentResults      map[string]core.Value            `json:"agent_results"`
	EvaluationResults *evaluation.Evaluation           `json:"evaluation_results,omitempty"`
	ShortTermMemory   map[string]core.Value            `json:"short_term_memory"`
	LongTermMemory    map[string]map[string]core.Value `json:"long_term_memory"`
	Status            Status                           `json:"status"`
}

func newState(task string) *State {
	return &State{
		Task:            task,
		Messages:        []Message{},
		AgentResults:    make(map[string]core.Value),
		ShortTermMemory: make(map[string]core.Value),
		LongTermMemory:  make(map[string]map[string]core.Value),
		Status:          StatusInitialized,
	}
}
