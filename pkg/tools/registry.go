package tools

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mcp-document-service/internal/models"
	"mcp-document-service/pkg/logging"
)

// Registry maps tool names to their descriptors. It is populated once at
// startup via Register/RegisterAll and read-only afterwards; the same
// registry value is shared by reference across every transport binding and
// session instance.
type Registry struct {
	tools  map[string]*Tool
	order  []string
	logger *logging.StructuredLogger
	mu     sync.RWMutex

	stats Stats
}

// Stats tracks invocation counts for the health endpoint.
type Stats struct {
	TotalInvocations  int64
	FailedInvocations int64
	InvocationsByName map[string]int64
	mu                sync.Mutex
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *logging.StructuredLogger) *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
		stats: Stats{
			InvocationsByName: make(map[string]int64),
		},
	}
}

// Register adds one tool. Duplicate names are rejected: registration runs
// once at startup, so a duplicate is a programming error worth surfacing
// rather than silently overwriting.
func (r *Registry) Register(tool *Tool) error {
	if tool == nil {
		return fmt.Errorf("cannot register nil tool")
	}
	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if tool.Contract == nil {
		return fmt.Errorf("tool %s registered without input contract", tool.Name)
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s registered without handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s already registered", tool.Name)
	}

	if tool.Description == "" {
		r.logger.WithContext("tool", tool.Name).
			Warn("Tool registered without description")
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	r.logger.WithContext("tool", tool.Name).Info("Tool registered")

	return nil
}

// RegisterAll registers tools in order, stopping at the first failure.
func (r *Registry) RegisterAll(tools []*Tool) error {
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a tool by exact name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns the protocol view of every registered tool, in registration
// order.
func (r *Registry) List() []models.MCPTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]models.MCPTool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Dispatch looks up the tool by name and runs it through the envelope
// adapter. An unknown name yields a failure envelope whose text is distinct
// from validation failures so clients can tell "bad tool name" from "bad
// arguments". Dispatch never panics and always returns a well-formed
// envelope.
func (r *Registry) Dispatch(ctx context.Context, name string, raw map[string]interface{}) models.MCPToolsCallResult {
	start := time.Now()

	tool, ok := r.Get(name)
	if !ok {
		r.recordInvocation(name, true)
		return failureEnvelope(fmt.Sprintf("unknown tool: %s", name))
	}

	envelope := Invoke(ctx, tool, raw)
	r.recordInvocation(name, envelope.IsError)
	r.logger.LogToolInvocation(name, time.Since(start), envelope.IsError)

	return envelope
}

// Snapshot returns a copy of the invocation statistics.
func (r *Registry) Snapshot() map[string]interface{} {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()

	byName := make(map[string]int64, len(r.stats.InvocationsByName))
	for name, count := range r.stats.InvocationsByName {
		byName[name] = count
	}

	return map[string]interface{}{
		"total_invocations":   r.stats.TotalInvocations,
		"failed_invocations":  r.stats.FailedInvocations,
		"invocations_by_name": byName,
	}
}

func (r *Registry) recordInvocation(name string, failed bool) {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()

	r.stats.TotalInvocations++
	if failed {
		r.stats.FailedInvocations++
	}
	r.stats.InvocationsByName[name]++
}
