// Package tool implements the side-effecting capabilities agents may be
// granted: web search, code execution, file operations, data analysis and
// memory access. Each tool is an opaque named operation whose failure is
// reported as a *core.ToolError and never corrupts agent state beyond a
// normal failed log entry.
//
// External collaborators (the search backend, the filesystem, the command
// runner) are injected through constructors; there is no package-level
// client state.
package tool

import (
	"context"
	"sort"
	"sync"

	"github.com/swarmforge/swarmforge/core"
)

// Tool is a named operation an agent may invoke with string-keyed arguments.
//
// Implementations should:
//   - use snake_case names
//   - report failures as (or wrapped in) *core.ToolError
//   - be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string
	// Description returns a short human-readable summary of what the tool does.
	Description() string
	// Call executes the tool. Each call is independent; a failure must not
	// leave the tool in a broken state.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// FuncTool adapts a plain function to the Tool interface.
type FuncTool struct {
	name        string
	description string
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewFuncTool constructs a FuncTool.
func NewFuncTool(name, description string, fn func(ctx context.Context, args map[string]any) (string, error)) *FuncTool {
	return &FuncTool{name: name, description: description, fn: fn}
}

// Name returns the tool name.
func (t *FuncTool) Name() string { return t.name }

// Description returns the tool description.
func (t *FuncTool) Description() string { return t.description }

// Call invokes the wrapped function, normalizing unknown errors into
// EXECUTION_ERROR tool errors.
func (t *FuncTool) Call(ctx context.Context, args map[string]any) (string, error) {
	out, err := t.fn(ctx, args)
	if err != nil {
		if te, ok := err.(*core.ToolError); ok {
			return "", te
		}
		return "", core.NewToolError(t.name, err.Error(), "EXECUTION_ERROR")
	}
	return out, nil
}

// Registry holds the available tools by name. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds (or replaces) a tool under its own name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get looks up a tool; an unknown name is a NotFoundError.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, core.NewNotFoundError("tool", name)
	}
	return t, nil
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select returns the tools for the given names, skipping unknown ones.
// With no names it returns every registered tool in name order.
func (r *Registry) Select(names ...string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(names) == 0 {
		all := make([]Tool, 0, len(r.tools))
		for _, name := range r.sortedLocked() {
			all = append(all, r.tools[name])
		}
		return all
	}
	selected := make([]Tool, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			selected = append(selected, t)
		}
	}
	return selected
}

func (r *Registry) sortedLocked() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// stringArg extracts a required string argument, producing a
// VALIDATION_ERROR tool error when missing or mistyped.
func stringArg(tool string, args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", core.NewToolError(tool, "missing required argument "+key, "VALIDATION_ERROR")
	}
	s, ok := raw.(string)
	if !ok {
		return "", core.NewToolError(tool, "argument "+key+" must be a string", "VALIDATION_ERROR")
	}
	return s, nil
}

// optStringArg extracts an optional string argument with a default.
func optStringArg(tool string, args map[string]any, key, def string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", core.NewToolError(tool, "argument "+key+" must be a string", "VALIDATION_ERROR")
	}
	return s, nil
}
