package kernel

import "github.com/polyglot-agents/webkernel/observability"

// Kernel event types emitted during the runtime loop.
const (
	EventRunStart       observability.EventType = "kernel.run.start"
	EventIterationStart observability.EventType = "kernel.iteration.start"
	EventToolCall       observability.EventType = "kernel.tool.call"
	EventToolComplete   observability.EventType = "kernel.tool.complete"
	EventResponse       observability.EventType = "kernel.response"
	EventError          observability.EventType = "kernel.error"
)
