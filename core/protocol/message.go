package protocol

import "encoding/json"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one tool invocation requested by the model. Arguments is
// the raw JSON object passed to the executor; ID correlates the request
// with the tool-role result message that answers it and need only be
// unique within a session.
//
// UnmarshalJSON additionally accepts the nested chat-API format
// ({function: {name, arguments}}) with string-encoded arguments, so
// engine output decodes directly into the canonical type.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = unwrapArguments(nested.Function.Arguments)
		return nil
	}

	type plain ToolCall
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Arguments = unwrapArguments(p.Arguments)
	*tc = ToolCall(p)
	return nil
}

// unwrapArguments unquotes double-encoded arguments: chat APIs commonly
// carry the arguments object as a JSON string ("{\"x\":1}").
func unwrapArguments(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return raw
}

// Message represents a single message in a conversation. Role indicates
// the sender; Content is a string for text or a structured value for
// anything else.
//
// For tool-calling conversations, assistant messages carry ToolCalls and
// tool result messages carry a ToolCallID that correlates back to the
// request.
type Message struct {
	Role       Role       `json:"role"`
	Content    any        `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewMessage creates a Message with the given role and content.
// Use struct literals directly when setting tool call fields.
func NewMessage(role Role, content any) Message {
	return Message{Role: role, Content: content}
}
