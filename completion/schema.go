// Package completion adapts the canonical tool-calling conversation
// model to a constrained-decoding engine that has no native tool
// support: it builds the output schema the engine is forced into,
// rewrites multi-role history into the engine's restricted role
// vocabulary, and parses (or salvages) what comes back.
package completion

import (
	"encoding/json"

	"github.com/polyglot-agents/webkernel/core/protocol"
)

// BuildSchema returns the JSON Schema string the engine's output is
// constrained to: a discriminated union of a text variant and, when
// tools are offered, a tool-call variant whose name enumeration is
// exactly the offered tool names in offer order. Deterministic for a
// given tool list.
func BuildSchema(tools []protocol.Tool) string {
	text := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":    map[string]any{"type": "string", "const": "text"},
			"content": map[string]any{"type": "string"},
		},
		"required": []string{"type", "content"},
	}

	var doc any = text
	if len(tools) > 0 {
		names := make([]string, len(tools))
		for i, t := range tools {
			names[i] = t.Name
		}
		call := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":      map[string]any{"type": "string", "const": "tool_call"},
				"name":      map[string]any{"type": "string", "enum": names},
				"arguments": map[string]any{"type": "object"},
			},
			"required": []string{"type", "name", "arguments"},
		}
		doc = map[string]any{"anyOf": []any{text, call}}
	}

	// Plain maps of JSON values; Marshal cannot fail and sorts keys,
	// keeping the output stable.
	b, _ := json.Marshal(doc)
	return string(b)
}
