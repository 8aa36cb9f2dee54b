package views

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/anu/internal/ui/models"
	"github.com/charmbracelet/lipgloss"
)

// RenderStatus renders the status bar: phase on the left, model on the right.
func RenderStatus(s models.State) string {
	left := renderPhase(s)

	right := ""
	if s.CurrentModel != "" {
		right = StatusModelStyle.Render(s.CurrentModel)
	}
	if right == "" {
		return left
	}

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderPhase(s models.State) string {
	if s.Paused {
		return StatusPausedStyle.Render("⏸ Paused (ctrl+p or /resume)")
	}

	switch s.StatusPhase {
	case "thinking":
		dots := strings.Repeat(".", s.DotCount)
		return StatusThinkingStyle.Render(fmt.Sprintf("%s Thinking%s", s.Spinner.View(), dots))
	case "executing":
		return StatusExecutingStyle.Render(fmt.Sprintf("%s %s", s.Spinner.View(), s.StatusMessage))
	case "done":
		return StatusDoneStyle.Render("✔ " + s.StatusMessage)
	case "failed":
		return StatusPausedStyle.Render("✘ " + s.StatusMessage)
	default:
		return StatusDefaultStyle.Render("Ready")
	}
}
