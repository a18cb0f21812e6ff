package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/polyglot-agents/webkernel/observability"
)

// Envelope is the uniform tool dispatch result returned for every
// dispatch, successful or not.
type Envelope struct {
	Success bool            `json:"success"`
	Output  json.RawMessage `json:"output,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Dispatcher routes tool-call requests to registry executors and emits
// status transitions through the observer. Concurrent dispatches are
// independent: each emits its own ordered status pair, and a failure in
// one never affects another.
type Dispatcher struct {
	registry *Registry
	observer observability.Observer
}

// NewDispatcher creates a Dispatcher over the registry. A nil observer
// is replaced with NoOpObserver.
func NewDispatcher(registry *Registry, observer observability.Observer) *Dispatcher {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Dispatcher{registry: registry, observer: observer}
}

// Dispatch executes the named tool with the given JSON arguments.
// An unknown name yields a failure envelope and emits no status
// updates: lookup precedes status emission, and an unregistered name
// has no language tag to report. A dispatch that reaches its executor
// emits exactly two updates: running, then complete or error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, input json.RawMessage) Envelope {
	entry, ok := d.registry.Get(name)
	if !ok {
		return Envelope{Error: "Unknown tool: " + name}
	}

	d.observer.OnToolUpdate(ctx, observability.ToolUpdate{
		Name:     name,
		Language: entry.Language,
		Status:   observability.StatusRunning,
	})

	output, err := entry.Handler(ctx, input)
	if err != nil {
		d.observer.OnToolUpdate(ctx, observability.ToolUpdate{
			Name:     name,
			Language: entry.Language,
			Status:   observability.StatusError,
		})
		return Envelope{Error: err.Error()}
	}

	d.observer.OnToolUpdate(ctx, observability.ToolUpdate{
		Name:     name,
		Language: entry.Language,
		Status:   observability.StatusComplete,
	})
	return Envelope{Success: true, Output: normalizeOutput(output)}
}

// normalizeOutput converts an executor's return value into raw JSON:
// strings that already are JSON documents pass through decoded, other
// strings are carried as JSON string values, and everything else is
// marshaled directly.
func normalizeOutput(v any) json.RawMessage {
	switch out := v.(type) {
	case nil:
		return json.RawMessage(`null`)
	case json.RawMessage:
		return out
	case string:
		if json.Valid([]byte(out)) {
			return json.RawMessage(out)
		}
		b, _ := json.Marshal(out)
		return b
	default:
		b, err := json.Marshal(v)
		if err != nil {
			b, _ = json.Marshal(fmt.Sprint(v))
		}
		return b
	}
}
