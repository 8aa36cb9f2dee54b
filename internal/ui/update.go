package ui

import (
	"strings"
	"time"

	"github.com/Cyclone1070/anu/internal/session"
	"github.com/Cyclone1070/anu/internal/ui/models"
	"github.com/Cyclone1070/anu/internal/ui/services"
	"github.com/Cyclone1070/anu/internal/ui/views"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const helpText = `Available commands:
- /pause - Stop handling requests
- /resume - Continue handling requests
- /clear - Clear the conversation history
- /models - List and switch models
- /help - Show this help
- /quit - Exit

ctrl+p toggles pause, ctrl+c exits.`

const defaultTick = 300 * time.Millisecond

// BubbleTeaModel implements tea.Model
type BubbleTeaModel struct {
	state models.State

	// Dependencies
	renderer services.MarkdownRenderer
	session  *session.State
	tick     time.Duration

	// App -> UI
	events        <-chan workflow.Event
	messageChan   <-chan string
	modelListChan <-chan []string
	modelChan     <-chan string

	// UI -> App
	utterances  chan<- string
	commandChan chan<- Command

	// Ready signal
	readyChan chan<- struct{}
}

// View renders the UI
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state)
}

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// newBubbleTeaModel creates a new Bubble Tea model
func newBubbleTeaModel(
	channels *Channels,
	state *session.State,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
	opts Options,
) BubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Ask me anything..."
	ti.Focus()

	vp := viewport.New(80, 20)

	if state == nil {
		state = &session.State{}
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	return BubbleTeaModel{
		state: models.State{
			Input:         ti,
			Viewport:      vp,
			Spinner:       spinnerFactory(),
			Messages:      []models.Message{},
			StatusPhase:   "ready",
			AssistantName: opts.AssistantName,
			CurrentModel:  opts.Model,
			Paused:        state.Paused(),
		},
		renderer:      renderer,
		session:       state,
		tick:          tick,
		events:        channels.Events,
		messageChan:   channels.Messages,
		modelListChan: channels.ModelList,
		modelChan:     channels.Model,
		utterances:    channels.Utterances,
		commandChan:   channels.Commands,
		readyChan:     channels.Ready,
	}
}

// Internal messages
type tickMsg time.Time
type eventMsg struct{ event workflow.Event }
type messageReceivedMsg string
type modelListReceivedMsg []string
type modelChangedMsg string

// Init initializes the model
func (m BubbleTeaModel) Init() tea.Cmd {
	// Signal that UI is ready
	if m.readyChan != nil {
		close(m.readyChan)
	}

	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		tick(m.tick),
		listenForEvents(m.events),
		listenForMessages(m.messageChan),
		listenForModelList(m.modelListChan),
		listenForModel(m.modelChan),
	)
}

// Update handles messages
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Viewport.Width = msg.Width
		m.state.Viewport.Height = msg.Height - 4 // Reserve space for input and status
		m.updateViewport()
		return m, nil

	case tickMsg:
		m.state.DotCount = (m.state.DotCount + 1) % 4
		m.state.Paused = m.session.Paused()
		return m, tick(m.tick)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.handleEvent(msg.event)
		return m, listenForEvents(m.events)

	case messageReceivedMsg:
		m.appendMessage(models.RoleAssistant, string(msg))
		return m, listenForMessages(m.messageChan)

	case modelListReceivedMsg:
		m.state.ModelList = []string(msg)
		m.state.ShowModelList = len(msg) > 0
		m.state.ModelListIndex = 0
		for i, name := range msg {
			if name == m.state.CurrentModel {
				m.state.ModelListIndex = i
			}
		}
		return m, listenForModelList(m.modelListChan)

	case modelChangedMsg:
		m.state.CurrentModel = string(msg)
		return m, listenForModel(m.modelChan)
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleEvent maps workflow events onto the status bar and chat.
func (m *BubbleTeaModel) handleEvent(ev workflow.Event) {
	switch e := ev.(type) {
	case workflow.ThinkingEvent:
		m.state.StatusPhase = "thinking"
		m.state.StatusMessage = ""
	case workflow.ToolStartEvent:
		m.state.StatusPhase = "executing"
		m.state.StatusMessage = services.FormatToolCall(e.ToolName, e.Args)
	case workflow.ToolEndEvent:
		m.state.StatusPhase = "done"
		if e.Failed {
			m.state.StatusPhase = "failed"
		}
		m.state.StatusMessage = e.ToolName
	case workflow.TextEvent:
		m.state.StatusPhase = "done"
		m.state.StatusMessage = "Answered"
	case workflow.DoneEvent:
		m.state.StatusPhase = "ready"
		m.state.StatusMessage = ""
		m.state.Busy = false
	case workflow.NoticeEvent:
		m.appendMessage(models.RoleNotice, e.Text)
	}
}

// handleKeyPress handles keyboard input
func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.ShowModelList {
		switch msg.String() {
		case "up", "k":
			if m.state.ModelListIndex > 0 {
				m.state.ModelListIndex--
			}
		case "down", "j":
			if m.state.ModelListIndex < len(m.state.ModelList)-1 {
				m.state.ModelListIndex++
			}
		case "enter":
			if m.state.ModelListIndex < len(m.state.ModelList) {
				m.sendCommand(Command{
					Type: CommandSwitchModel,
					Args: map[string]string{
						"model": m.state.ModelList[m.state.ModelListIndex],
					},
				})
			}
			m.state.ShowModelList = false
		case "esc":
			m.state.ShowModelList = false
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+p":
		m.togglePause()
		return m, nil

	case "enter":
		input := strings.TrimSpace(m.state.Input.Value())
		if input == "" {
			return m, nil
		}
		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}
		if m.state.Busy {
			return m, nil
		}
		if m.session.Paused() {
			m.appendMessage(models.RoleNotice, "Paused. Type /resume or press ctrl+p to continue.")
			m.state.Input.SetValue("")
			return m, nil
		}

		select {
		case m.utterances <- input:
		default:
			// App has not picked up the previous line yet.
			return m, nil
		}
		m.appendMessage(models.RoleUser, input)
		m.state.Input.SetValue("")
		m.state.Busy = true
		m.state.StatusPhase = "thinking"
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleCommand handles slash commands
func (m BubbleTeaModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	m.state.Input.SetValue("")

	switch strings.ToLower(parts[0]) {
	case "/pause":
		m.session.Pause()
		m.state.Paused = true
		m.appendMessage(models.RoleNotice, "Paused.")
	case "/resume":
		m.session.Resume()
		m.state.Paused = false
		m.appendMessage(models.RoleNotice, "Resumed.")
	case "/clear":
		m.sendCommand(Command{Type: CommandClearHistory})
		m.state.Messages = []models.Message{}
		m.updateViewport()
	case "/models":
		m.sendCommand(Command{Type: CommandListModels})
	case "/help":
		m.appendMessage(models.RoleNotice, helpText)
	case "/quit", "/exit":
		return m, tea.Quit
	default:
		m.appendMessage(models.RoleNotice, "Unknown command "+parts[0]+". Type /help for commands.")
	}

	return m, nil
}

func (m *BubbleTeaModel) togglePause() {
	m.state.Paused = m.session.TogglePause()
	if m.state.Paused {
		m.appendMessage(models.RoleNotice, "Paused.")
	} else {
		m.appendMessage(models.RoleNotice, "Resumed.")
	}
}

func (m *BubbleTeaModel) sendCommand(c Command) {
	select {
	case m.commandChan <- c:
	default:
		// Drop if channel is full
	}
}

func (m *BubbleTeaModel) appendMessage(role, content string) {
	m.state.Messages = append(m.state.Messages, models.Message{Role: role, Content: content})
	m.updateViewport()
}

// updateViewport updates the viewport content
func (m *BubbleTeaModel) updateViewport() {
	content := views.FormatChatContent(m.state.Messages, m.state.AssistantName, m.state.Width-4, m.renderer)
	m.state.Viewport.SetContent(content)
	m.state.Viewport.GotoBottom()
}

// Helper commands for listening to channels
func listenForEvents(ch <-chan workflow.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-ch}
	}
}

func listenForMessages(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return messageReceivedMsg(<-ch)
	}
}

func listenForModelList(ch <-chan []string) tea.Cmd {
	return func() tea.Msg {
		return modelListReceivedMsg(<-ch)
	}
}

func listenForModel(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return modelChangedMsg(<-ch)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
