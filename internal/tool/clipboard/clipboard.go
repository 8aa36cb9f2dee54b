// Package clipboard reads and writes the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/tool/helper/content"
	"github.com/atotto/clipboard"
)

const SkillName = "clipboard"

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("clipboard is not available on this system")

// Board is the system clipboard.
type Board interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemBoard struct{}

func (systemBoard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemBoard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// System returns the OS clipboard.
func System() Board { return systemBoard{} }

// New builds the clipboard skill. It fails when the OS clipboard has no
// backing utility, so the registry skips it.
func New(board Board) (*tool.Set, error) {
	if board == nil {
		if clipboard.Unsupported {
			return nil, ErrUnavailable
		}
		board = System()
	}

	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "copy_to_clipboard",
			Description: "Copy text to the clipboard",
			Parameters: tool.Object(map[string]*tool.Schema{
				"text": tool.String("Text to copy"),
			}, "text"),
		}, func(_ context.Context, req struct {
			Text string `json:"text"`
		}) (tool.Result, error) {
			if err := board.WriteAll(req.Text); err != nil {
				return tool.Result{}, fmt.Errorf("clipboard error: %w", err)
			}
			preview, cut := content.Truncate(req.Text, 50)
			if cut {
				preview += "..."
			}
			return tool.OK("Copied to clipboard: %s", preview), nil
		}),
		tool.Typed(tool.Declaration{
			Name:        "get_clipboard",
			Description: "Read the current clipboard text",
			Parameters:  tool.Object(nil),
		}, func(context.Context, struct{}) (tool.Result, error) {
			text, err := board.ReadAll()
			if err != nil {
				return tool.Result{}, fmt.Errorf("clipboard error: %w", err)
			}
			if text == "" {
				return tool.OK("Clipboard is empty"), nil
			}
			preview, cut := content.Truncate(text, 100)
			if cut {
				preview += "..."
			}
			return tool.OK("Clipboard content: %s", preview), nil
		}),
	), nil
}
