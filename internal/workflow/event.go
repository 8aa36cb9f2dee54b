package workflow

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// UserEvent is emitted when an utterance enters the loop.
type UserEvent struct {
	Text string
}

func (UserEvent) isEvent() {}

// TextEvent is emitted when the LLM produces its final answer.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ThinkingEvent is emitted before each model call.
type ThinkingEvent struct{}

func (ThinkingEvent) isEvent() {}

// DoneEvent is emitted when a turn completes.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ToolName string
	Args     string
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool completes, successfully or not.
type ToolEndEvent struct {
	ToolName string
	Result   string
	Failed   bool
}

func (ToolEndEvent) isEvent() {}

// NoticeEvent carries out-of-band text such as a due reminder.
type NoticeEvent struct {
	Text string
}

func (NoticeEvent) isEvent() {}
