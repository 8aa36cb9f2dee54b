package ui

import (
	"context"
	"time"

	"github.com/Cyclone1070/anu/internal/session"
	"github.com/Cyclone1070/anu/internal/ui/services"
	"github.com/Cyclone1070/anu/internal/ui/views"
	"github.com/Cyclone1070/anu/internal/workflow"
	tea "github.com/charmbracelet/bubbletea"
)

// Command types sent from the UI to the app.
const (
	CommandListModels   = "list_models"
	CommandSwitchModel  = "switch_model"
	CommandClearHistory = "clear_history"
)

// Command is a request from the UI that is not an utterance.
type Command struct {
	Type string
	Args map[string]string
}

// Options configures the look of the UI.
type Options struct {
	AssistantName string
	Model         string
	// Tick drives the thinking-dots animation. Default: 300ms.
	Tick  time.Duration
	Theme views.Theme
}

// UI implements the assistant's terminal display using Bubble Tea
type UI struct {
	program *tea.Program

	utterances    chan string
	messageChan   chan string
	modelListChan chan []string
	modelChan     chan string
	commandChan   chan Command
	readyChan     chan struct{}
}

// Channels holds the channels between the UI and the rest of the app
type Channels struct {
	// Events from the turn loop and the reminder watcher.
	Events     chan workflow.Event
	Utterances chan string
	Messages   chan string
	ModelList  chan []string
	Model      chan string
	Commands   chan Command
	Ready      chan struct{} // Closed when the UI is ready to accept requests
}

// NewChannels creates a new Channels struct with default buffers
func NewChannels() *Channels {
	return &Channels{
		Events:     make(chan workflow.Event, 32),
		Utterances: make(chan string, 1),
		Messages:   make(chan string, 10),
		ModelList:  make(chan []string, 1),
		Model:      make(chan string, 1),
		Commands:   make(chan Command, 10),
		Ready:      make(chan struct{}),
	}
}

// New creates a new Bubble Tea UI
func New(
	channels *Channels,
	state *session.State,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	opts Options,
) *UI {
	views.ApplyTheme(opts.Theme)

	ui := &UI{
		utterances:    channels.Utterances,
		messageChan:   channels.Messages,
		modelListChan: channels.ModelList,
		modelChan:     channels.Model,
		commandChan:   channels.Commands,
		readyChan:     channels.Ready,
	}

	model := newBubbleTeaModel(channels, state, renderer, spinnerFactory, opts)
	ui.program = tea.NewProgram(model, tea.WithAltScreen())

	return ui
}

// Start runs the UI program until the user quits
func (u *UI) Start() error {
	_, err := u.program.Run()
	return err
}

// Quit stops the UI program
func (u *UI) Quit() {
	u.program.Quit()
}

// ReadUtterance blocks until the user submits a line
func (u *UI) ReadUtterance(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case text := <-u.utterances:
		return text, nil
	}
}

// WriteMessage sends an assistant reply to the UI
func (u *UI) WriteMessage(content string) {
	select {
	case u.messageChan <- content:
	default:
		// Drop if channel is full
	}
}

// WriteModelList sends a list of models to the UI
func (u *UI) WriteModelList(models []string) {
	select {
	case u.modelListChan <- models:
	default:
		// Drop if channel is full
	}
}

// SetModel updates the model name shown in the status bar
func (u *UI) SetModel(model string) {
	select {
	case u.modelChan <- model:
	default:
	}
}

// Commands returns the command channel
func (u *UI) Commands() <-chan Command {
	return u.commandChan
}

// Ready returns a channel that is closed when the UI is ready to accept requests
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}
