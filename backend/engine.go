// Package backend defines the model completion engine boundary: the
// Engine interface implemented by inference adapters, the Session that
// tracks engine readiness, and the typed errors engines report when
// constrained decoding fails.
package backend

import (
	"context"

	"github.com/polyglot-agents/webkernel/core/protocol"
)

// ResponseFormat constrains engine output at generation time. Type is
// the engine's format discriminator ("json_object"); Schema, when set,
// is the JSON Schema the output must conform to.
type ResponseFormat struct {
	Type   string
	Schema string
}

// ChatRequest is a single non-streaming completion call. Messages must
// already use the restricted {system, user, assistant} role vocabulary.
type ChatRequest struct {
	Messages       []protocol.Message
	Temperature    float64
	MaxTokens      int
	ResponseFormat *ResponseFormat
}

// Engine is the completion backend. Complete returns the raw content of
// the model's single choice. Implementations that need model loading
// before first use additionally implement Initializer.
type Engine interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Initializer is implemented by engines that load model weights or
// otherwise warm up before serving completions.
type Initializer interface {
	Init(ctx context.Context) error
}
