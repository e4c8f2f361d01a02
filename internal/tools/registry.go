// Package tools implements the Tool Registry: a name-keyed map of callable
// tools with O(1) lookup and append-only (last-write-wins) registration.
package tools

import (
	"context"
	"sync"

	"github.com/openclaw/core/internal/clawerr"
)

// Tool is anything the runtime can invoke by name with JSON-shaped
// arguments.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry holds every registered Tool, keyed by name. Concurrent-safe:
// execution and registration can run from multiple goroutines (agents
// invoking tools while the orchestrator registers new ones at startup).
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or overwrites the tool under name.
func (r *Registry) Register(name string, tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) HasTool(name string) bool {
	_, ok := r.Get(name)
	return ok
}

func (r *Registry) ListTools() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Execute looks up name and runs it, returning a ToolError via
// clawerr when no such tool is registered.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, &clawerr.ToolError{Tool: name, Message: "tool not found"}
	}
	return tool.Execute(ctx, args)
}
