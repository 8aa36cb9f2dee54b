package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Message roles shown in the chat pane.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleNotice    = "notice"
)

// Message is one rendered chat line.
type Message struct {
	Role    string
	Content string
}

// State is everything the views need to draw a frame.
type State struct {
	Width  int
	Height int

	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	Messages []Message

	// StatusPhase is one of "ready", "thinking", "executing", "done".
	StatusPhase   string
	StatusMessage string
	DotCount      int

	AssistantName string
	CurrentModel  string

	// Busy is set while a turn is running; input is not accepted.
	Busy   bool
	Paused bool

	ShowModelList  bool
	ModelList      []string
	ModelListIndex int
}
