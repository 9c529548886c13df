package pipeline

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmforge/swarmforge/agent"
	"github.com/swarmforge/swarmforge/evaluation"
	"github.com/swarmforge/swarmforge/memory"
	"github.com/swarmforge/swarmforge/swarm"
)

func TestRunner_FullRun(t *testing.T) {
	store := memory.NewStore()
	r := NewRunner(store, evaluation.NewEngine())

	state, err := r.Run(context.Background(), "demo task")
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, state.Status)
	require.Len(t, state.Messages, 2, "input turn plus completion turn")
	assert.Equal(t, RoleUser, state.Messages[0].Role)
	assert.Equal(t, "demo task", state.Messages[0].Content)
	assert.Equal(t, RoleAssistant, state.Messages[1].Role)

	// The run was filed under the "tasks" category.
	got, ok := store.RetrieveLongTerm("task_0", "tasks")
	require.True(t, ok)
	task, _ := got.Field("task")
	assert.Equal(t, "demo task", task.Text())

	// And the task itself landed in short-term memory.
	current, ok := store.RetrieveShortTerm("current_task")
	require.True(t, ok)
	assert.Equal(t, "demo task", current.Text())
}

func TestRunner_PlaceholderPrimaryResult(t *testing.T) {
	r := NewRunner(nil, nil)
	state, err := r.Run(context.Background(), "summarize findings")
	require.NoError(t, err)

	primary, ok := state.AgentResults["primary_agent"]
	require.True(t, ok)
	assert.Equal(t, "Processing: summarize findings...", primary.Text())
	require.NotNil(t, state.EvaluationResults)
	assert.Contains(t, state.EvaluationResults.CriteriaScores, "relevance")
	assert.Contains(t, state.EvaluationResults.CriteriaScores, "completeness")
}

func TestRunner_TaskKeysIncrementAcrossRuns(t *testing.T) {
	store := memory.NewStore()
	r := NewRunner(store, nil)

	for i := 0; i < 3; i++ {
		_, err := r.Run(context.Background(), "t")
		require.NoError(t, err)
	}

	for _, key := range []string{"task_0", "task_1", "task_2"} {
		_, ok := store.RetrieveLongTerm(key, "tasks")
		assert.True(t, ok, "expected %s to be filed", key)
	}
	assert.Equal(t, 3, store.CategorySize("tasks"))
}

func TestRunner_SnapshotsPopulated(t *testing.T) {
	r := NewRunner(nil, nil)
	state, err := r.Run(context.Background(), "t")
	require.NoError(t, err)

	assert.Contains(t, state.ShortTermMemory, "current_task")
	require.Contains(t, state.LongTermMemory, "tasks")
	assert.Contains(t, state.LongTermMemory["tasks"], "task_0")
}

func TestRunner_WithPoolFoldsAgentResults(t *testing.T) {
	pool := swarm.NewPool(nil, nil)
	_, err := pool.AddAgent(agent.NewConfig("worker", agent.RoleExecutor))
	require.NoError(t, err)

	r := NewRunner(nil, nil, WithPool(pool))
	state, err := r.Run(context.Background(), "crunch numbers")
	require.NoError(t, err)

	slot, ok := state.AgentResults["worker"]
	require.True(t, ok)
	status, _ := slot.Field("status")
	assert.Equal(t, "success", status.Text())

	primary, ok := state.AgentResults["primary_agent"]
	require.True(t, ok)
	assert.Contains(t, primary.Text(), "worker")
	assert.Equal(t, StatusCompleted, state.Status)
}

func TestRunner_WithHierarchicalPoolFoldsCoordinatorAndWorkers(t *testing.T) {
	pool := swarm.NewPool(nil, nil)
	for _, name := range []string{"coord", "w1", "w2"} {
		_, err := pool.AddAgent(agent.NewConfig(name, agent.RoleResearcher))
		require.NoError(t, err)
	}
	require.NoError(t, pool.SetMode(swarm.ModeHierarchical))

	r := NewRunner(nil, nil, WithPool(pool))
	state, err := r.Run(context.Background(), "demo task")
	require.NoError(t, err)

	for _, name := range []string{"coord", "w1", "w2"} {
		slot, ok := state.AgentResults[name]
		require.True(t, ok, "expected a slot for %s", name)
		status, _ := slot.Field("status")
		assert.Equal(t, "success", status.Text(), name)
	}

	// The coordinator's output leads.
	primary, ok := state.AgentResults["primary_agent"]
	require.True(t, ok)
	assert.Contains(t, primary.Text(), "coord")
	assert.Contains(t, primary.Text(), "Coordinate: demo task")
	require.NotNil(t, state.EvaluationResults)
	assert.Greater(t, state.EvaluationResults.OverallScore, 0.0)
}

func TestRunner_TruncatesLongTasksOnRuneBoundary(t *testing.T) {
	r := NewRunner(nil, nil)
	task := strings.Repeat("→", 40)
	state, err := r.Run(context.Background(), task)
	require.NoError(t, err)

	primary, ok := state.AgentResults["primary_agent"]
	require.True(t, ok)
	assert.True(t, utf8.ValidString(primary.Text()))
	require.Len(t, state.Messages, 2)
	assert.True(t, utf8.ValidString(state.Messages[1].Content))
}

func TestRunner_EvaluationHistoryGrows(t *testing.T) {
	engine := evaluation.NewEngine()
	r := NewRunner(nil, engine)

	_, err := r.Run(context.Background(), "one")
	require.NoError(t, err)
	_, err = r.Run(context.Background(), "two")
	require.NoError(t, err)

	assert.Len(t, engine.History(), 2)
}
