package services

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for the terminal.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders markdown with glamour's auto-detected style.
type GlamourRenderer struct{}

func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

// RenderMarkdown renders content and trims the padding glamour adds.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) (string, error) {
	out, err := renderer.Render(content, width)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
