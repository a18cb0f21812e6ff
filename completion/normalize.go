package completion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/polyglot-agents/webkernel/core/protocol"
)

// Normalize rewrites a canonical history into the {system, user,
// assistant} vocabulary an engine without native tool support accepts:
// tool results become user messages tagged with their call ID,
// assistant tool calls are flattened to prose, and a generated system
// message carrying the tool roster and response-format instructions
// replaces any leading system message (or is prepended).
//
// The caller's slice is never mutated; a fresh slice is returned.
// Normalizing an already-normalized history is a no-op.
func Normalize(messages []protocol.Message, tools []protocol.Tool) []protocol.Message {
	out := make([]protocol.Message, 0, len(messages)+1)
	for _, msg := range messages {
		out = append(out, flatten(msg))
	}

	system := protocol.NewMessage(protocol.RoleSystem, systemPrompt(tools))
	if len(out) > 0 && out[0].Role == protocol.RoleSystem {
		out[0] = system
		return out
	}
	return append([]protocol.Message{system}, out...)
}

func flatten(msg protocol.Message) protocol.Message {
	switch {
	case msg.Role == protocol.RoleTool:
		content := fmt.Sprintf("[Tool result from %s]: %s", msg.ToolCallID, stringify(msg.Content))
		return protocol.NewMessage(protocol.RoleUser, content)

	case msg.Role == protocol.RoleAssistant && len(msg.ToolCalls) > 0:
		// The engine's history format cannot represent structured
		// calls; describe them as prose instead.
		parts := make([]string, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			parts[i] = fmt.Sprintf("Called %s with %s", tc.Name, argumentsText(tc.Arguments))
		}
		return protocol.NewMessage(protocol.RoleAssistant, strings.Join(parts, "; "))

	default:
		return protocol.NewMessage(msg.Role, stringify(msg.Content))
	}
}

func stringify(content any) string {
	switch c := content.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	}
}

func argumentsText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

// systemPrompt enumerates the offered tools and states the two output
// formats. The format examples must match BuildSchema's variants
// verbatim; the parser in adapter.go branches on the same shapes.
func systemPrompt(tools []protocol.Tool) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant.")

	if len(tools) > 0 {
		b.WriteString(" You have access to the following tools:\n")
		for _, t := range tools {
			fmt.Fprintf(&b, "\n- %s: %s\n  Parameters: %s\n", t.Name, t.Description, stringify(t.Parameters))
		}
	}

	b.WriteString("\nAlways respond with a single JSON object.")
	b.WriteString("\n\nTo respond with text:\n")
	b.WriteString(`{"type": "text", "content": "your response here"}`)
	if len(tools) > 0 {
		b.WriteString("\n\nTo call a tool:\n")
		b.WriteString(`{"type": "tool_call", "name": "tool_name", "arguments": {"param": "value"}}`)
	}
	return b.String()
}
