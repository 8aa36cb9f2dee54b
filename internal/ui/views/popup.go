package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/anu/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderModelPopup renders the model selection popup
func RenderModelPopup(s models.State) string {
	if !s.ShowModelList || len(s.ModelList) == 0 {
		return ""
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Select Model:"), "")

	for i, model := range s.ModelList {
		marker := "  "
		if model == s.CurrentModel {
			marker = "• "
		}
		if i == s.ModelListIndex {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				Render(fmt.Sprintf("▸ %s", model)))
		} else {
			lines = append(lines, marker+model)
		}
	}

	lines = append(lines, "", lipgloss.NewStyle().Faint(true).Render("↑/↓: Navigate  Enter: Select  Esc: Cancel"))

	return PopupBoxStyle.Render(strings.Join(lines, "\n"))
}
