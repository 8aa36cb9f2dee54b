package views

import (
	"github.com/Cyclone1070/anu/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderRoot renders the complete UI layout
func RenderRoot(s models.State) string {
	if s.ShowModelList {
		return lipgloss.Place(
			s.Width,
			s.Height,
			lipgloss.Center,
			lipgloss.Center,
			RenderModelPopup(s),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderChat(s),
		RenderInput(s),
		RenderStatus(s),
	)
}
