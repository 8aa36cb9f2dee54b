package provider

import (
	"context"
	"encoding/json"

	"github.com/Cyclone1070/anu/internal/tool"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// FunctionCall is the function the model asked to invoke.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCall is one structured tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

// Message is a single entry in the conversation sent to the model.
// Tool results carry ToolCallID and ToolName so adapters can pair them
// with the originating call.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"name,omitempty"`
}

// Request is one model invocation.
// A nil or empty Tools slice means no tools are advertised at all.
type Request struct {
	SystemInstruction string
	Messages          []Message
	Tools             []tool.Declaration
	MaxOutputTokens   int32
	Temperature       *float32
}

// Provider is a remote chat-completion service.
type Provider interface {
	// Generate sends the request and returns the assistant's reply, which
	// holds either text content or a non-empty set of tool calls.
	Generate(ctx context.Context, req *Request) (*Message, error)

	// Model returns the active model name.
	Model() string
}
