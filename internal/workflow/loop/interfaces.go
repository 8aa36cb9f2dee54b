package loop

import (
	"context"

	"github.com/Cyclone1070/anu/internal/history"
	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/workflow"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	// Generate sends the request to the LLM and returns its reply.
	Generate(ctx context.Context, req *provider.Request) (*provider.Message, error)
}

// toolManager resolves and runs tools.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// Execute runs a tool call and returns the result as a tool message.
	// It never fails; errors are reported inside the message content.
	Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) provider.Message

	// Invoke runs a single tool by name outside of a model turn.
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}

// conversationStore is the persisted multi-turn context.
type conversationStore interface {
	Add(role, content string) history.Message
	Recent(n int) []history.Message
}
