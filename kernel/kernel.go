// Package kernel implements the runtime loop that composes the
// completion adapter, tool dispatcher, and session: each iteration
// issues a completion, dispatches any requested tool calls, folds the
// results into the conversation, and repeats until the model produces
// a final text response.
//
// The kernel initializes from configuration via New, with the backend
// session and tool registry injected. Functional options allow test
// overrides of any subsystem.
//
//	k, err := kernel.New(&cfg, backendSession, registry)
//	result, err := k.Run(ctx, "Summarize the dataset in data.json")
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/polyglot-agents/webkernel/backend"
	"github.com/polyglot-agents/webkernel/completion"
	"github.com/polyglot-agents/webkernel/core/protocol"
	"github.com/polyglot-agents/webkernel/observability"
	"github.com/polyglot-agents/webkernel/session"
	"github.com/polyglot-agents/webkernel/tools"
)

// Result holds the outcome of a kernel Run invocation.
type Result struct {
	Response   string           // Final text response from the agent.
	Iterations int              // Number of loop cycles completed.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
}

// ToolCallRecord is one entry in the run's tool invocation log.
type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int    // Loop cycle in which the call occurred.
	Result    string // Tool execution output.
	IsError   bool   // Whether execution returned an error.
}

// Option configures a Kernel after config-driven initialization.
// Applied by New after cold start; overrides replace config-created defaults.
type Option func(*Kernel)

// WithSession overrides the config-created conversation session.
func WithSession(s session.Session) Option {
	return func(k *Kernel) { k.session = s }
}

// WithAdapter overrides the default completion adapter.
func WithAdapter(a *completion.Adapter) Option {
	return func(k *Kernel) { k.adapter = a }
}

// WithDispatcher overrides the default tool dispatcher.
func WithDispatcher(d *tools.Dispatcher) Option {
	return func(k *Kernel) { k.dispatcher = d }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) {
		k.observer = o
		k.dispatcher = nil // rebuilt against the new observer unless also overridden
	}
}

// WithLogger routes the default observer to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return WithObserver(observability.NewSlogObserver(logger))
}

// Kernel is the runtime that executes the agentic loop.
type Kernel struct {
	adapter       *completion.Adapter
	dispatcher    *tools.Dispatcher
	registry      *tools.Registry
	session       session.Session
	observer      observability.Observer
	maxIterations int
	systemPrompt  string
}

// New creates a Kernel from configuration around an injected backend
// session and tool registry. Functional options applied after
// initialization can override any subsystem for testing.
func New(cfg *Config, backendSession *backend.Session, registry *tools.Registry, opts ...Option) (*Kernel, error) {
	conv, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	var observer observability.Observer = observability.NewSlogObserver(slog.Default())
	if cfg.Observer != "" {
		observer, err = observability.GetObserver(cfg.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
	}

	k := &Kernel{
		adapter:       completion.NewAdapter(backendSession),
		registry:      registry,
		session:       conv,
		observer:      observer,
		maxIterations: cfg.MaxIterations,
		systemPrompt:  cfg.SystemPrompt,
	}

	for _, opt := range opts {
		opt(k)
	}
	if k.dispatcher == nil {
		k.dispatcher = tools.NewDispatcher(registry, k.observer)
	}

	return k, nil
}

// Session returns the kernel's conversation session.
func (k *Kernel) Session() session.Session {
	return k.session
}

// Run executes the agentic loop for the given prompt.
// Returns a Result with the final response, iteration
// count, and tool call log. When maxIterations is 0, the loop runs
// until the model produces a final response or the context is
// cancelled. Returns ErrMaxIterations if a non-zero iteration budget
// is exhausted.
func (k *Kernel) Run(ctx context.Context, prompt string) (*Result, error) {
	k.session.AddMessage(protocol.NewMessage(protocol.RoleUser, prompt))

	result := &Result{}
	offered := k.registry.List()

	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventRunStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "kernel.Run",
		Data: map[string]any{
			"prompt_length":  len(prompt),
			"max_iterations": k.maxIterations,
			"tools":          len(offered),
		},
	})

	for iteration := 0; k.maxIterations == 0 || iteration < k.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		k.observer.OnEvent(ctx, observability.Event{
			Type:      EventIterationStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "kernel.Run",
			Data:      map[string]any{"iteration": iteration + 1},
		})

		resp, err := k.adapter.Complete(ctx, completion.Request{
			Messages: k.buildMessages(),
			Tools:    offered,
		})
		if err != nil {
			return result, fmt.Errorf("completion failed: %w", err)
		}

		if len(resp.ToolCalls) == 0 {
			k.session.AddMessage(protocol.Message{
				Role:    protocol.RoleAssistant,
				Content: resp.Content,
			})
			result.Response = resp.Content
			result.Iterations = iteration + 1

			k.observer.OnEvent(ctx, observability.Event{
				Type:      EventResponse,
				Level:     observability.LevelInfo,
				Timestamp: time.Now(),
				Source:    "kernel.Run",
				Data: map[string]any{
					"iteration":       iteration + 1,
					"response_length": len(result.Response),
				},
			})

			return result, nil
		}

		k.session.AddMessage(protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			k.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolCall,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "kernel.Run",
				Data: map[string]any{
					"iteration": iteration + 1,
					"name":      tc.Name,
				},
			})

			record := ToolCallRecord{
				ToolCall:  tc,
				Iteration: iteration + 1,
			}

			envelope := k.dispatcher.Dispatch(ctx, tc.Name, tc.Arguments)
			if envelope.Success {
				record.Result = string(envelope.Output)
			} else {
				record.Result = "error: " + envelope.Error
				record.IsError = true
			}

			// The model sees the same envelope shape for success and
			// failure; the record keeps the unwrapped form for callers.
			envelopeJSON, _ := json.Marshal(envelope)
			k.session.AddMessage(protocol.Message{
				Role:       protocol.RoleTool,
				Content:    string(envelopeJSON),
				ToolCallID: tc.ID,
			})

			k.observer.OnEvent(ctx, observability.Event{
				Type:      EventToolComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "kernel.Run",
				Data: map[string]any{
					"iteration": iteration + 1,
					"name":      tc.Name,
					"error":     record.IsError,
				},
			})

			result.ToolCalls = append(result.ToolCalls, record)
		}

		result.Iterations = iteration + 1
	}

	k.observer.OnEvent(ctx, observability.Event{
		Type:      EventError,
		Level:     observability.LevelWarning,
		Timestamp: time.Now(),
		Source:    "kernel.Run",
		Data: map[string]any{
			"error":      "max iterations reached",
			"iterations": k.maxIterations,
		},
	})

	return result, ErrMaxIterations
}

func (k *Kernel) buildMessages() []protocol.Message {
	sessionMsgs := k.session.Messages()

	if k.systemPrompt == "" {
		return sessionMsgs
	}

	messages := make([]protocol.Message, 0, len(sessionMsgs)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, k.systemPrompt))
	messages = append(messages, sessionMsgs...)
	return messages
}
