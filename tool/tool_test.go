package tool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/memory"
)

var (
	_ Tool = (*FuncTool)(nil)
	_ Tool = (*WebSearchTool)(nil)
	_ Tool = (*CodeExecutionTool)(nil)
	_ Tool = (*FileOperationsTool)(nil)
	_ Tool = (*DataAnalysisTool)(nil)
	_ Tool = (*MemoryTool)(nil)
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(NewDataAnalysisTool())
	r.Register(NewWebSearchTool(nil))

	got, err := r.Get("data_analysis")
	require.NoError(t, err)
	assert.Equal(t, "data_analysis", got.Name())

	_, err = r.Get("nope")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))

	assert.Equal(t, []string{"data_analysis", "web_search"}, r.Names())
}

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry()
	r.Register(NewDataAnalysisTool())
	r.Register(NewWebSearchTool(nil))

	all := r.Select()
	require.Len(t, all, 2)
	assert.Equal(t, "data_analysis", all[0].Name())

	some := r.Select("web_search", "unknown")
	require.Len(t, some, 1, "unknown names are skipped, not errors")
	assert.Equal(t, "web_search", some[0].Name())
}

func TestFuncTool_WrapsUnknownErrors(t *testing.T) {
	ft := NewFuncTool("boom", "always fails", func(context.Context, map[string]any) (string, error) {
		return "", errors.New("kaput")
	})
	_, err := ft.Call(context.Background(), nil)
	var te *core.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "boom", te.Tool)
	assert.Equal(t, "EXECUTION_ERROR", te.Code)
}

func TestWebSearchTool(t *testing.T) {
	client := SearchClientFunc(func(_ context.Context, query string, maxResults int) ([]SearchResult, error) {
		assert.Equal(t, "go concurrency", query)
		assert.Equal(t, 2, maxResults)
		return []SearchResult{
			{Title: "Pipelines", URL: "https://go.dev/blog/pipelines", Content: "fan-out fan-in"},
		}, nil
	})
	ws := NewWebSearchTool(client)

	out, err := ws.Call(context.Background(), map[string]any{"query": "go concurrency", "max_results": 2})
	require.NoError(t, err)
	assert.Contains(t, out, "- Pipelines: fan-out fan-in")
	assert.Contains(t, out, "URL: https://go.dev/blog/pipelines")
}

func TestWebSearchTool_Validation(t *testing.T) {
	ws := NewWebSearchTool(nil)
	_, err := ws.Call(context.Background(), map[string]any{})
	var te *core.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "VALIDATION_ERROR", te.Code)
}

func TestWebSearchTool_NoClient(t *testing.T) {
	ws := NewWebSearchTool(nil)
	out, err := ws.Call(context.Background(), map[string]any{"query": "anything"})
	require.NoError(t, err)
	assert.Equal(t, "Search client not configured.", out)
}

func TestWebSearchTool_NoResults(t *testing.T) {
	client := SearchClientFunc(func(context.Context, string, int) ([]SearchResult, error) {
		return nil, nil
	})
	out, err := NewWebSearchTool(client).Call(context.Background(), map[string]any{"query": "q"})
	require.NoError(t, err)
	assert.Equal(t, "No results found.", out)
}

func TestCodeExecutionTool_UnsupportedLanguage(t *testing.T) {
	ce := NewCodeExecutionTool()
	_, err := ce.Call(context.Background(), map[string]any{"code": "1", "language": "cobol"})
	var te *core.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "VALIDATION_ERROR", te.Code)
}

func TestCodeExecutionTool_Bash(t *testing.T) {
	ce := NewCodeExecutionTool()
	out, err := ce.Call(context.Background(), map[string]any{"code": "echo hi", "language": "bash"})
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
}

func TestFileOperationsTool_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fo := NewFileOperationsTool(dir)

	out, err := fo.Call(context.Background(), map[string]any{
		"operation": "write", "path": "notes/a.txt", "content": "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "File written: notes/a.txt", out)

	out, err = fo.Call(context.Background(), map[string]any{"operation": "read", "path": "notes/a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = fo.Call(context.Background(), map[string]any{"operation": "list", "path": "notes"})
	require.NoError(t, err)
	assert.Equal(t, "a.txt", out)
}

func TestFileOperationsTool_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "..", "escape.txt")
	defer os.Remove(outside)

	fo := NewFileOperationsTool(dir)
	_, err := fo.Call(context.Background(), map[string]any{
		"operation": "write", "path": "../escape.txt", "content": "x",
	})
	var te *core.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "VALIDATION_ERROR", te.Code)
}

func TestDataAnalysisTool_JSON(t *testing.T) {
	da := NewDataAnalysisTool()
	out, err := da.Call(context.Background(), map[string]any{
		"data": `{"a": 1, "b": 2}`, "analysis_type": "json",
	})
	require.NoError(t, err)
	assert.Equal(t, "Valid JSON with 2 top-level keys", out)

	_, err = da.Call(context.Background(), map[string]any{"data": "not json", "analysis_type": "json"})
	var te *core.ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "EXECUTION_ERROR", te.Code)
}

func TestDataAnalysisTool_Stats(t *testing.T) {
	da := NewDataAnalysisTool()
	out, err := da.Call(context.Background(), map[string]any{
		"data": "1 2 3 skip 4", "analysis_type": "stats",
	})
	require.NoError(t, err)
	assert.Equal(t, "Count: 4, Mean: 2.50, Min: 1, Max: 4", out)

	out, err = da.Call(context.Background(), map[string]any{"data": "no numbers here", "analysis_type": "stats"})
	require.NoError(t, err)
	assert.Equal(t, "No numeric data found", out)
}

func TestMemoryTool(t *testing.T) {
	store := memory.NewStore()
	mt := NewMemoryTool(store)
	ctx := context.Background()

	_, err := mt.Call(ctx, map[string]any{"operation": "set", "key": "k", "value": "v"})
	require.NoError(t, err)

	out, err := mt.Call(ctx, map[string]any{"operation": "get", "key": "k"})
	require.NoError(t, err)
	assert.Equal(t, "v", out)

	// The tool writes through to the shared store.
	got, ok := store.RetrieveShortTerm("k")
	require.True(t, ok)
	assert.Equal(t, "v", got.Text())

	_, err = mt.Call(ctx, map[string]any{"operation": "delete", "key": "k"})
	require.NoError(t, err)
	_, err = mt.Call(ctx, map[string]any{"operation": "get", "key": "k"})
	assert.True(t, core.IsNotFound(err))
}

func TestMemoryTool_Search(t *testing.T) {
	store := memory.NewStore()
	store.StoreLongTerm("task_0", core.StringValue("first"), "tasks")
	store.StoreLongTerm("task_1", core.StringValue("second"), "tasks")
	mt := NewMemoryTool(store)

	out, err := mt.Call(context.Background(), map[string]any{
		"operation": "search", "key": "task", "category": "tasks",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "- task_0: first")
	assert.Contains(t, out, "- task_1: second")
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(nil, t.TempDir(), memory.NewStore())
	assert.Equal(t, []string{
		"code_execution", "data_analysis", "file_operations", "memory_store", "web_search",
	}, r.Names())
}
