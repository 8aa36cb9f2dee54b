// Package conversation lets the model inspect and reset its own history.
package conversation

import (
	"context"

	"github.com/Cyclone1070/anu/internal/tool"
)

const SkillName = "conversation"

type store interface {
	Summary() string
	Clear()
}

// New builds the conversation skill over the history store.
func New(history store) *tool.Set {
	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "conversation_summary",
			Description: "Summarise the stored conversation history",
			Parameters:  tool.Object(nil),
		}, func(context.Context, struct{}) (string, error) {
			return history.Summary(), nil
		}),
		tool.Typed(tool.Declaration{
			Name:        "clear_history",
			Description: "Forget the stored conversation history",
			Parameters:  tool.Object(nil),
		}, func(context.Context, struct{}) (tool.Result, error) {
			history.Clear()
			return tool.OK("Conversation history cleared"), nil
		}),
	)
}
