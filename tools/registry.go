// Package tools holds the capability registry and the dispatcher that
// routes tool-call requests to registered executors with uniform status
// reporting and a single result envelope.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/polyglot-agents/webkernel/core/protocol"
)

// Handler is a capability executor. It receives the request context and
// the JSON arguments object from the model, and may return either a
// JSON-encoded string or any JSON-marshalable value; the dispatcher
// normalizes both into the result envelope.
type Handler func(ctx context.Context, input json.RawMessage) (any, error)

// Entry describes one registered capability: the tool spec the model
// sees, the implementing runtime's language tag, and the executor.
type Entry struct {
	Tool     protocol.Tool
	Language string
	Handler  Handler
}

// Registry is an ordered mapping from tool name to capability entry.
// Registration order is preserved by List so the schema's tool name
// enumeration is stable. Thread-safe for concurrent access; lookups
// take a read lock and have no side effects.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a capability to the registry. Duplicate names are
// rejected with ErrAlreadyExists rather than silently overwritten;
// use Replace to swap an existing tool's executor.
func (r *Registry) Register(e Entry) error {
	if e.Tool.Name == "" {
		return ErrEmptyName
	}
	if e.Handler == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, e.Tool.Name)
	}

	r.entries[e.Tool.Name] = e
	r.order = append(r.order, e.Tool.Name)
	return nil
}

// Replace updates an existing capability, keeping its position in the
// listing order. Returns ErrNotFound if the name is not registered.
func (r *Registry) Replace(e Entry) error {
	if e.Tool.Name == "" {
		return ErrEmptyName
	}
	if e.Handler == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.Tool.Name]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, e.Tool.Name)
	}

	r.entries[e.Tool.Name] = e
	return nil
}

// Get retrieves a capability entry by tool name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	return e, exists
}

// List returns the specs of all registered tools in registration order.
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.entries[name].Tool)
	}
	return list
}
