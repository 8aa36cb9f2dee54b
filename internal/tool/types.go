package tool

import "fmt"

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Object builds an object schema from its properties.
// Required lists the property names the model must always supply.
func Object(props map[string]*Schema, required ...string) *Schema {
	if props == nil {
		props = map[string]*Schema{}
	}
	return &Schema{
		Type:       TypeObject,
		Properties: props,
		Required:   required,
	}
}

// String returns a string property schema.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Integer returns an integer property schema.
func Integer(description string) *Schema {
	return &Schema{Type: TypeInteger, Description: description}
}

// Number returns a number property schema.
func Number(description string) *Schema {
	return &Schema{Type: TypeNumber, Description: description}
}

// Boolean returns a boolean property schema.
func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// Result is the status payload most skills hand back to the model.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK builds a successful Result.
func OK(format string, a ...any) Result {
	return Result{Status: "success", Message: fmt.Sprintf(format, a...)}
}
