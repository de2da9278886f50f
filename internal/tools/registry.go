// Package tools holds the executor-facing tool registry and the thin adapters
// over the Google Workspace service boundaries.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"atlas/internal/workflow"
)

// Tool pairs a registry name with its invocable and a short description used
// in agent capability listings.
type Tool struct {
	Name        string
	Description string
	Invoke      workflow.ToolFunc
}

// Registry is a closed, explicit tool set validated at construction. Plan
// steps referencing names outside the set degrade at execution time (the
// executor substitutes a placeholder result); the registry itself never grows
// after startup.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	registry := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, tool := range tools {
		name := strings.TrimSpace(tool.Name)
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if tool.Invoke == nil {
			return nil, fmt.Errorf("tool %q has no invocable", name)
		}
		if _, exists := registry.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		tool.Name = name
		registry.tools[name] = tool
	}
	return registry, nil
}

// Resolve implements workflow.ToolResolver.
func (r *Registry) Resolve(name string) (workflow.ToolFunc, bool) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return tool.Invoke, true
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
