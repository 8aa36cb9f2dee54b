package views

import (
	"strings"

	"github.com/Cyclone1070/anu/internal/ui/models"
	"github.com/Cyclone1070/anu/internal/ui/services"
)

// RenderChat renders the message history
func RenderChat(s models.State) string {
	if len(s.Messages) == 0 {
		name := s.AssistantName
		if name == "" {
			name = "the assistant"
		}
		return StatusDefaultStyle.Render("Say something to " + name + ". Type /help for commands.")
	}
	return s.Viewport.View()
}

// FormatChatContent formats the messages for the viewport
func FormatChatContent(messages []models.Message, assistant string, width int, renderer services.MarkdownRenderer) string {
	if assistant == "" {
		assistant = "AI"
	}
	var lines []string
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleUser:
			lines = append(lines, UserMessageStyle.Render("You: "+msg.Content))
		case models.RoleNotice:
			lines = append(lines, NoticeMessageStyle.Render(msg.Content))
		default:
			rendered, err := services.RenderMarkdown(msg.Content, width, renderer)
			if err != nil {
				rendered = msg.Content
			}
			lines = append(lines, AssistantMessageStyle.Render(assistant+": "+rendered))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
