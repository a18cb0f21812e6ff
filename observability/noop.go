package observability

import "context"

// NoOpObserver discards all events and updates with zero overhead.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

func (NoOpObserver) OnToolUpdate(ctx context.Context, update ToolUpdate) {}
