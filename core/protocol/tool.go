package protocol

// Tool defines a capability that can be offered to the model.
// This is the canonical tool specification type used across the runtime.
// Parameters uses JSON Schema format to describe the tool's input.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}
