package bridge

import (
	"context"
	"encoding/json"

	"github.com/polyglot-agents/webkernel/observability"
)

// Notifier forwards observer traffic to the host's fire-and-forget
// callbacks: events as (type, JSON data) pairs and tool status
// transitions as (name, language, status) triples. Nil callbacks are
// skipped, so a host may subscribe to either channel alone.
type Notifier struct {
	Event      func(eventType string, dataJSON string)
	ToolUpdate func(name, language, status string)
}

var _ observability.Observer = (*Notifier)(nil)

func (n *Notifier) OnEvent(_ context.Context, event observability.Event) {
	if n.Event == nil {
		return
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		data = []byte(`{}`)
	}
	n.Event(string(event.Type), string(data))
}

func (n *Notifier) OnToolUpdate(_ context.Context, update observability.ToolUpdate) {
	if n.ToolUpdate == nil {
		return
	}
	n.ToolUpdate(update.Name, update.Language, string(update.Status))
}
