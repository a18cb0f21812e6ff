package completion

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/polyglot-agents/webkernel/backend"
	"github.com/polyglot-agents/webkernel/core/protocol"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2048
)

// Request is one completion call from the orchestration kernel.
// Temperature and MaxTokens default to 0.7 and 2048 when unset.
type Request struct {
	Messages    []protocol.Message `json:"messages"`
	Tools       []protocol.Tool    `json:"tools,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
}

// Response is the canonical completion result. ToolCalls is empty (not
// nil) for plain text responses so the wire shape always carries
// "tool_calls": [].
type Response struct {
	Role      protocol.Role       `json:"role"`
	Content   string              `json:"content"`
	ToolCalls []protocol.ToolCall `json:"tool_calls"`
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithIDGenerator overrides tool-call ID generation (used in tests).
func WithIDGenerator(fn func() string) Option {
	return func(a *Adapter) { a.newID = fn }
}

// Adapter orchestrates one engine call: normalize history, build the
// constrained-decoding schema, issue the completion, then parse or
// salvage the result. It owns no conversation state.
type Adapter struct {
	session *backend.Session
	newID   func() string
}

// NewAdapter creates an Adapter over the given backend session.
func NewAdapter(session *backend.Session, opts ...Option) *Adapter {
	a := &Adapter{
		session: session,
		newID:   func() string { return "call_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Complete issues one completion for the request. The only error ever
// returned is backend.ErrNotInitialized, raised before any engine work
// happens; every failure after that point is converted into a usable
// Response so the conversation survives a malformed turn.
func (a *Adapter) Complete(ctx context.Context, req Request) (Response, error) {
	if !a.session.Ready() {
		return Response{}, backend.ErrNotInitialized
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	content, err := a.session.Complete(ctx, backend.ChatRequest{
		Messages:    Normalize(req.Messages, req.Tools),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: &backend.ResponseFormat{
			Type:   "json_object",
			Schema: BuildSchema(req.Tools),
		},
	})
	if err != nil {
		return a.salvage(err), nil
	}
	return a.parse(content), nil
}

// parse decodes the engine's structured output and branches on the
// union tag. A missing tag is treated as text; anything that does not
// decode as either variant goes through salvage with the raw content
// attached.
func (a *Adapter) parse(content string) Response {
	var out struct {
		Type      string          `json:"type"`
		Content   string          `json:"content"`
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return a.salvage(&backend.MalformedOutputError{
			RawText: content,
			Message: "engine output is not valid JSON: " + err.Error(),
		})
	}

	switch out.Type {
	case "tool_call":
		args := out.Arguments
		if len(args) == 0 || string(args) == "null" {
			args = json.RawMessage(`{}`)
		}
		return Response{
			Role:    protocol.RoleAssistant,
			Content: "",
			ToolCalls: []protocol.ToolCall{{
				ID:        a.newID(),
				Name:      out.Name,
				Arguments: args,
			}},
		}
	case "text", "":
		return textResponse(out.Content)
	default:
		return a.salvage(&backend.MalformedOutputError{
			RawText: content,
			Message: "engine output has unknown type: " + out.Type,
		})
	}
}

// salvage turns an engine failure into a plain text Response. A typed
// MalformedOutputError carrying raw text is preferred; scanning the
// error message for the engine's raw-output marker is the fallback for
// engines that only report through error strings.
func (a *Adapter) salvage(err error) Response {
	var malformed *backend.MalformedOutputError
	if errors.As(err, &malformed) && malformed.RawText != "" {
		return textResponse(malformed.RawText)
	}
	if text, ok := backend.RawOutputFromError(err.Error()); ok {
		return textResponse(text)
	}
	return textResponse("Error: " + err.Error())
}

func textResponse(content string) Response {
	return Response{
		Role:      protocol.RoleAssistant,
		Content:   content,
		ToolCalls: []protocol.ToolCall{},
	}
}
