package models

// ParamType is the set of primitive JSON Schema types a tool parameter
// may declare.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamArray   ParamType = "array"
	ParamObject  ParamType = "object"
)

// ParamSpec describes one tool parameter.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
}

// ToolDefinition is the provider-neutral description of a registered
// tool, serialized per-provider by internal/agent/toolconv.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []ParamSpec `json:"parameters"`
}
