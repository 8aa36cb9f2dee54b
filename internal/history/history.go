package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Cyclone1070/anu/internal/tool/service/fs"
	"github.com/rs/zerolog"
)

// DefaultMaxMessages is the buffer capacity used when none is configured.
const DefaultMaxMessages = 100

// Message is one persisted conversation entry.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is a size-bounded, file-backed conversation log.
// The whole buffer is rewritten after every mutation.
type History struct {
	mu       sync.Mutex
	path     string
	max      int
	messages []Message
	log      zerolog.Logger
	now      func() time.Time
}

// Option configures a History.
type Option func(*History)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *History) { h.now = now }
}

// New loads the history stored at path, keeping at most maxMessages entries.
// A missing or unreadable file yields an empty history.
func New(path string, maxMessages int, logger zerolog.Logger, opts ...Option) *History {
	if maxMessages < 1 {
		maxMessages = DefaultMaxMessages
	}
	h := &History{
		path: path,
		max:  maxMessages,
		log:  logger.With().Str("component", "history").Logger(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.load()
	return h
}

// Add appends a timestamped message, evicts the oldest entries beyond the
// cap and persists the buffer. Persistence failures are logged only.
func (h *History) Add(role, content string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := Message{Role: role, Content: content, Timestamp: h.now()}
	h.messages = append(h.messages, msg)
	if over := len(h.messages) - h.max; over > 0 {
		h.messages = append([]Message(nil), h.messages[over:]...)
	}
	h.persist()
	return msg
}

// Recent returns the last n messages in chronological order.
func (h *History) Recent(n int) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n <= 0 {
		return nil
	}
	start := max(len(h.messages)-n, 0)
	out := make([]Message, len(h.messages)-start)
	copy(out, h.messages[start:])
	return out
}

// All returns a copy of every stored message.
func (h *History) All() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Clear empties the history and persists the empty buffer.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = nil
	h.persist()
}

// Summary describes how many messages each side contributed and the time
// span they cover.
func (h *History) Summary() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.messages) == 0 {
		return "No conversation history"
	}

	var user, assistant int
	for _, m := range h.messages {
		switch m.Role {
		case "user":
			user++
		case "assistant":
			assistant++
		}
	}

	const layout = "2006-01-02 15:04"
	first := h.messages[0].Timestamp.Format(layout)
	last := h.messages[len(h.messages)-1].Timestamp.Format(layout)
	return fmt.Sprintf("History: %d user messages, %d assistant messages. From %s to %s", user, assistant, first, last)
}

func (h *History) load() {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.log.Warn().Err(err).Str("path", h.path).Msg("failed to read conversation history")
		}
		return
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		h.log.Warn().Err(err).Str("path", h.path).Msg("discarding unreadable conversation history")
		return
	}
	if over := len(messages) - h.max; over > 0 {
		messages = messages[over:]
	}
	h.messages = messages
	h.log.Debug().Int("messages", len(messages)).Msg("loaded conversation history")
}

// persist must be called with h.mu held.
func (h *History) persist() {
	if err := h.write(); err != nil {
		h.log.Error().Err(err).Str("path", h.path).Msg("failed to save conversation history")
	}
}

func (h *History) write() error {
	messages := h.messages
	if messages == nil {
		messages = []Message{}
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return fs.WriteFileAtomic(h.path, data, 0o644)
}
