// Package bridge is the host-facing boundary of the runtime: JSON text
// in, JSON text out, never a Go error and never a panic. The
// orchestration kernel calls ExecuteTool and Complete; outbound
// notifications flow through a Notifier. All wire decoding happens
// here, once, so interior packages work with typed values.
package bridge

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/polyglot-agents/webkernel/backend"
	"github.com/polyglot-agents/webkernel/completion"
	"github.com/polyglot-agents/webkernel/tools"
)

// notReadyMessage is the wire-exact error text hosts match on when a
// completion is requested before the backend session is initialized.
const notReadyMessage = "Backend not initialized"

// Bridge exposes the runtime to the orchestration kernel.
type Bridge struct {
	adapter    *completion.Adapter
	dispatcher *tools.Dispatcher
}

// New creates a Bridge over the completion adapter and tool dispatcher.
func New(adapter *completion.Adapter, dispatcher *tools.Dispatcher) *Bridge {
	return &Bridge{adapter: adapter, dispatcher: dispatcher}
}

// ExecuteTool runs a registered tool with the given JSON arguments and
// returns the JSON-encoded result envelope. Invalid input JSON yields
// a failure envelope, not an error.
func (b *Bridge) ExecuteTool(ctx context.Context, name, inputJSON string) string {
	input := json.RawMessage(inputJSON)
	if inputJSON == "" {
		input = json.RawMessage(`{}`)
	}
	if !json.Valid(input) {
		return marshalJSON(tools.Envelope{Error: "Invalid JSON input"})
	}
	return marshalJSON(b.dispatcher.Dispatch(ctx, name, input))
}

// Complete issues one completion call and returns the JSON-encoded
// response, or {"error": ...} when no result could be produced.
func (b *Bridge) Complete(ctx context.Context, requestJSON string) string {
	var req completion.Request
	if err := json.Unmarshal([]byte(requestJSON), &req); err != nil {
		return errorJSON("invalid completion request: " + err.Error())
	}

	resp, err := b.adapter.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, backend.ErrNotInitialized) {
			return errorJSON(notReadyMessage)
		}
		return errorJSON(err.Error())
	}
	return marshalJSON(resp)
}

func errorJSON(message string) string {
	return marshalJSON(map[string]string{"error": message})
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// The bridge's own types always marshal; this guards handler
		// output smuggled through Envelope.Output.
		fallback, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(fallback)
	}
	return string(b)
}
