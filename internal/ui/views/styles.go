package views

import "github.com/charmbracelet/lipgloss"

// Theme holds the palette as lipgloss colour strings (ANSI numbers or hex).
type Theme struct {
	Primary   string
	Secondary string
	Muted     string
	Alert     string
}

var (
	ColorPrimary   = lipgloss.Color("39")
	ColorSecondary = lipgloss.Color("86")
	ColorMuted     = lipgloss.Color("243")
	ColorAlert     = lipgloss.Color("203")

	UserMessageStyle      lipgloss.Style
	AssistantMessageStyle lipgloss.Style
	NoticeMessageStyle    lipgloss.Style
	InputStyle            lipgloss.Style
	PopupBoxStyle         lipgloss.Style
	StatusDefaultStyle    lipgloss.Style
	StatusThinkingStyle   lipgloss.Style
	StatusExecutingStyle  lipgloss.Style
	StatusDoneStyle       lipgloss.Style
	StatusPausedStyle     lipgloss.Style
	StatusModelStyle      lipgloss.Style
)

func init() {
	buildStyles()
}

// ApplyTheme replaces the palette. Empty fields keep the current colour.
// Call it before the program starts.
func ApplyTheme(t Theme) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&ColorPrimary, t.Primary)
	set(&ColorSecondary, t.Secondary)
	set(&ColorMuted, t.Muted)
	set(&ColorAlert, t.Alert)
	buildStyles()
}

func buildStyles() {
	UserMessageStyle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	AssistantMessageStyle = lipgloss.NewStyle()
	NoticeMessageStyle = lipgloss.NewStyle().Foreground(ColorSecondary).Italic(true)
	InputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorMuted).
		Padding(0, 1)
	PopupBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	StatusDefaultStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusThinkingStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	StatusExecutingStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	StatusDoneStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	StatusPausedStyle = lipgloss.NewStyle().Foreground(ColorAlert).Bold(true)
	StatusModelStyle = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
}
