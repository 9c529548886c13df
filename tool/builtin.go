package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/swarmforge/swarmforge/core"
	"github.com/swarmforge/swarmforge/memory"
)

// SearchResult is one hit returned by a SearchClient.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchClient is the backend the web_search tool queries. Production code
// plugs in a real provider; tests use a stub.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// SearchClientFunc adapts a function to the SearchClient interface.
type SearchClientFunc func(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

// Search calls the wrapped function.
func (f SearchClientFunc) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	return f(ctx, query, maxResults)
}

// WebSearchTool queries an injected search backend and formats the hits as a
// bullet list.
type WebSearchTool struct {
	client     SearchClient
	defaultMax int
}

// WebSearchOptions configure a WebSearchTool.
type WebSearchOptions struct {
	// DefaultMaxResults applies when the call omits max_results.
	DefaultMaxResults int
}

// NewWebSearchTool constructs the web_search tool. A nil client is allowed;
// calls then report that no backend is configured instead of failing hard,
// so a pool can carry the tool without credentials.
func NewWebSearchTool(client SearchClient, optFns ...func(o *WebSearchOptions)) *WebSearchTool {
	opts := WebSearchOptions{DefaultMaxResults: 5}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.DefaultMaxResults <= 0 {
		opts.DefaultMaxResults = 5
	}
	return &WebSearchTool{client: client, defaultMax: opts.DefaultMaxResults}
}

// Name implements Tool.
func (t *WebSearchTool) Name() string { return "web_search" }

// Description implements Tool.
func (t *WebSearchTool) Description() string {
	return "Search the web for information. Arguments: query (required), max_results (optional, default 5)."
}

// Call implements Tool.
func (t *WebSearchTool) Call(ctx context.Context, args map[string]any) (string, error) {
	query, err := stringArg(t.Name(), args, "query")
	if err != nil {
		return "", err
	}
	maxResults, err := intArg(t.Name(), args, "max_results", t.defaultMax)
	if err != nil {
		return "", err
	}
	if t.client == nil {
		return "Search client not configured.", nil
	}
	hits, err := t.client.Search(ctx, query, maxResults)
	if err != nil {
		return "", core.NewToolError(t.Name(), fmt.Sprintf("search failed: %v", err), "EXECUTION_ERROR")
	}
	if len(hits) == 0 {
		return "No results found.", nil
	}
	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		lines = append(lines, fmt.Sprintf("- %s: %s\n  URL: %s", hit.Title, hit.Content, hit.URL))
	}
	return strings.Join(lines, "\n"), nil
}

// CodeExecutionTool runs a snippet with the host interpreter. Each run is
// capped at the configured timeout (default 10s); exceeding it is an
// EXECUTION_ERROR, not a hang.
type CodeExecutionTool struct {
	timeout time.Duration
}

// NewCodeExecutionTool constructs the code_execution tool.
func NewCodeExecutionTool(optFns ...func(o *CodeExecutionOptions)) *CodeExecutionTool {
	opts := CodeExecutionOptions{Timeout: 10 * time.Second}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CodeExecutionTool{timeout: opts.Timeout}
}

// CodeExecutionOptions configure a CodeExecutionTool.
type CodeExecutionOptions struct {
	// Timeout bounds a single run.
	Timeout time.Duration
}

// Name implements Tool.
func (t *CodeExecutionTool) Name() string { return "code_execution" }

// Description implements Tool.
func (t *CodeExecutionTool) Description() string {
	return "Execute a code snippet. Arguments: code (required), language (optional: python or bash, default python)."
}

// Call implements Tool.
func (t *CodeExecutionTool) Call(ctx context.Context, args map[string]any) (string, error) {
	code, err := stringArg(t.Name(), args, "code")
	if err != nil {
		return "", err
	}
	language, err := optStringArg(t.Name(), args, "language", "python")
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var cmd *exec.Cmd
	switch strings.ToLower(language) {
	case "python":
		cmd = exec.CommandContext(runCtx, "python3", "-c", code)
	case "bash":
		cmd = exec.CommandContext(runCtx, "bash", "-c", code)
	default:
		return "", core.NewToolError(t.Name(), fmt.Sprintf("unsupported language: %s", language), "VALIDATION_ERROR")
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return "", core.NewToolError(t.Name(), fmt.Sprintf("execution timed out (%s limit)", t.timeout), "EXECUTION_ERROR")
	}
	if runErr != nil && stderr.Len() == 0 {
		return "", core.NewToolError(t.Name(), fmt.Sprintf("execution failed: %v", runErr), "EXECUTION_ERROR")
	}
	output := stdout.String()
	if output == "" {
		output = stderr.String()
	}
	if output == "" {
		output = "Execution completed with no output."
	}
	return output, nil
}

// FileOperationsTool performs read, write and list operations on the local
// filesystem, confined to a root directory.
type FileOperationsTool struct {
	root string
}

// NewFileOperationsTool constructs the file_operations tool rooted at dir.
// An empty dir means the current working directory.
func NewFileOperationsTool(dir string) *FileOperationsTool {
	if dir == "" {
		dir = "."
	}
	return &FileOperationsTool{root: dir}
}

// Name implements Tool.
func (t *FileOperationsTool) Name() string { return "file_operations" }

// Description implements Tool.
func (t *FileOperationsTool) Description() string {
	return "Read, write or list files. Arguments: operation (read|write|list), path, content (write only)."
}

// Call implements Tool.
func (t *FileOperationsTool) Call(_ context.Context, args map[string]any) (string, error) {
	operation, err := stringArg(t.Name(), args, "operation")
	if err != nil {
		return "", err
	}
	path, err := stringArg(t.Name(), args, "path")
	if err != nil {
		return "", err
	}
	full, err := t.resolve(path)
	if err != nil {
		return "", err
	}

	switch operation {
	case "read":
		data, err := os.ReadFile(full)
		if err != nil {
			return "", core.NewToolError(t.Name(), fmt.Sprintf("read failed: %v", err), "EXECUTION_ERROR")
		}
		return string(data), nil
	case "write":
		content, err := optStringArg(t.Name(), args, "content", "")
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return "", core.NewToolError(t.Name(), fmt.Sprintf("write failed: %v", err), "EXECUTION_ERROR")
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			return "", core.NewToolError(t.Name(), fmt.Sprintf("write failed: %v", err), "EXECUTION_ERROR")
		}
		return fmt.Sprintf("File written: %s", path), nil
	case "list":
		entries, err := os.ReadDir(full)
		if err != nil {
			return "", core.NewToolError(t.Name(), fmt.Sprintf("list failed: %v", err), "EXECUTION_ERROR")
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		return strings.Join(names, "\n"), nil
	default:
		return "", core.NewToolError(t.Name(), fmt.Sprintf("unknown operation: %s", operation), "VALIDATION_ERROR")
	}
}

// resolve joins path onto the root and rejects escapes via "..".
func (t *FileOperationsTool) resolve(path string) (string, error) {
	full := filepath.Join(t.root, path)
	rel, err := filepath.Rel(t.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", core.NewToolError(t.Name(), fmt.Sprintf("path escapes root: %s", path), "VALIDATION_ERROR")
	}
	return full, nil
}

// DataAnalysisTool performs lightweight analysis on a text payload: JSON
// validation or whitespace-separated numeric statistics.
type DataAnalysisTool struct{}

// NewDataAnalysisTool constructs the data_analysis tool.
func NewDataAnalysisTool() *DataAnalysisTool { return &DataAnalysisTool{} }

// Name implements Tool.
func (t *DataAnalysisTool) Name() string { return "data_analysis" }

// Description implements Tool.
func (t *DataAnalysisTool) Description() string {
	return "Analyze a text payload. Arguments: data, analysis_type (json|stats)."
}

// Call implements Tool.
func (t *DataAnalysisTool) Call(_ context.Context, args map[string]any) (string, error) {
	data, err := stringArg(t.Name(), args, "data")
	if err != nil {
		return "", err
	}
	analysisType, err := stringArg(t.Name(), args, "analysis_type")
	if err != nil {
		return "", err
	}

	switch analysisType {
	case "json":
		var parsed map[string]json.RawMessage
		if err := json.Unmarshal([]byte(data), &parsed); err != nil {
			return "", core.NewToolError(t.Name(), fmt.Sprintf("invalid JSON: %v", err), "EXECUTION_ERROR")
		}
		return fmt.Sprintf("Valid JSON with %d top-level keys", len(parsed)), nil
	case "stats":
		var numbers []float64
		for _, field := range strings.Fields(data) {
			if n, err := strconv.ParseFloat(field, 64); err == nil {
				numbers = append(numbers, n)
			}
		}
		if len(numbers) == 0 {
			return "No numeric data found", nil
		}
		sum, min, max := 0.0, numbers[0], numbers[0]
		for _, n := range numbers {
			sum += n
			if n < min {
				min = n
			}
			if n > max {
				max = n
			}
		}
		return fmt.Sprintf("Count: %d, Mean: %.2f, Min: %g, Max: %g", len(numbers), sum/float64(len(numbers)), min, max), nil
	default:
		return "", core.NewToolError(t.Name(), fmt.Sprintf("analysis type %q not implemented", analysisType), "VALIDATION_ERROR")
	}
}

// MemoryTool exposes an agent-facing set/get/delete/search surface over a
// shared memory.Store. Set and get operate on the short-term tier; search
// queries a long-term category.
type MemoryTool struct {
	store *memory.Store
}

// NewMemoryTool constructs the memory_store tool over the given store.
func NewMemoryTool(store *memory.Store) *MemoryTool {
	if store == nil {
		store = memory.NewStore()
	}
	return &MemoryTool{store: store}
}

// Name implements Tool.
func (t *MemoryTool) Name() string { return "memory_store" }

// Description implements Tool.
func (t *MemoryTool) Description() string {
	return "Key-value memory access. Arguments: operation (set|get|delete|search), key, value (set only), category (search only)."
}

// Call implements Tool.
func (t *MemoryTool) Call(_ context.Context, args map[string]any) (string, error) {
	operation, err := stringArg(t.Name(), args, "operation")
	if err != nil {
		return "", err
	}
	key, err := stringArg(t.Name(), args, "key")
	if err != nil {
		return "", err
	}

	switch operation {
	case "set":
		value, err := stringArg(t.Name(), args, "value")
		if err != nil {
			return "", err
		}
		t.store.StoreShortTerm(key, core.StringValue(value), 0)
		return fmt.Sprintf("Stored %q", key), nil
	case "get":
		value, ok := t.store.RetrieveShortTerm(key)
		if !ok {
			return "", core.NewNotFoundError("memory key", key)
		}
		return value.Text(), nil
	case "delete":
		if !t.store.DeleteShortTerm(key) {
			return "", core.NewNotFoundError("memory key", key)
		}
		return fmt.Sprintf("Deleted %q", key), nil
	case "search":
		category, err := optStringArg(t.Name(), args, "category", "")
		if err != nil {
			return "", err
		}
		hits := t.store.Search(key, category)
		if len(hits) == 0 {
			return "No matches found.", nil
		}
		lines := make([]string, 0, len(hits))
		for _, hit := range hits {
			lines = append(lines, fmt.Sprintf("- %s: %s", hit.Key, hit.Value.Text()))
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", core.NewToolError(t.Name(), fmt.Sprintf("unknown operation: %s", operation), "VALIDATION_ERROR")
	}
}

// DefaultRegistry builds a registry with all builtin tools. The search
// client and file root may be zero values; the memory store is shared with
// the caller so agents and pipeline see the same data.
func DefaultRegistry(search SearchClient, fileRoot string, store *memory.Store) *Registry {
	r := NewRegistry()
	r.Register(NewWebSearchTool(search))
	r.Register(NewCodeExecutionTool())
	r.Register(NewFileOperationsTool(fileRoot))
	r.Register(NewDataAnalysisTool())
	r.Register(NewMemoryTool(store))
	return r
}

// intArg extracts an optional integer argument that may arrive as int,
// float64 (JSON) or numeric string.
func intArg(tool string, args map[string]any, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, core.NewToolError(tool, "argument "+key+" must be an integer", "VALIDATION_ERROR")
		}
		return n, nil
	default:
		return 0, core.NewToolError(tool, "argument "+key+" must be an integer", "VALIDATION_ERROR")
	}
}
