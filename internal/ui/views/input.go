package views

import (
	"github.com/Cyclone1070/anu/internal/ui/models"
)

// RenderInput renders the input bar
func RenderInput(s models.State) string {
	style := InputStyle
	if s.Width > 4 {
		style = style.Width(s.Width - 2)
	}
	return style.Render(s.Input.View())
}
