package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/anu/internal/history"
	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fixed replies returned when a turn cannot produce a model answer.
const (
	MsgUnavailable    = "I'm having trouble thinking right now."
	MsgNoCandidates   = "I couldn't generate a response."
	MsgEmptyResponse  = "I received an empty response."
	MsgNoAnswer       = "I'm not sure how to respond to that."
	MsgTooManySteps   = "I completed as much as I could, but the task required too many steps."
	MsgRateLimited    = "I'm getting too many requests right now. Please try again in a moment."
	rateLimitedFmt    = "I'm getting too many requests right now. Please try again in %d seconds."
	recoveredErrorFmt = "Error executing recovered tool: %s"
)

// Config holds the per-turn model settings.
type Config struct {
	SystemInstruction string
	MaxIterations     int
	ContextMessages   int
	MaxOutputTokens   int32
	Temperature       float32
}

// DefaultConfig returns the standard turn settings.
func DefaultConfig() Config {
	return Config{
		MaxIterations:   10,
		ContextMessages: 6,
		MaxOutputTokens: 200,
		Temperature:     0.7,
	}
}

// Loop runs conversation turns against a model, dispatching requested
// tools until the model answers in text or the iteration cap is reached.
type Loop struct {
	provider llmProvider
	tools    toolManager
	history  conversationStore
	events   chan<- workflow.Event
	cfg      Config
	log      zerolog.Logger

	// one turn at a time
	mu sync.Mutex
}

// NewLoop creates a loop. A nil events channel disables events; zero
// MaxIterations and ContextMessages take the defaults.
func NewLoop(provider llmProvider, tools toolManager, history conversationStore, events chan<- workflow.Event, cfg Config, logger zerolog.Logger) *Loop {
	def := DefaultConfig()
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.ContextMessages < 1 {
		cfg.ContextMessages = def.ContextMessages
	}
	return &Loop{
		provider: provider,
		tools:    tools,
		history:  history,
		events:   events,
		cfg:      cfg,
		log:      logger.With().Str("component", "loop").Logger(),
	}
}

// RunConversation handles one user utterance and always returns a reply.
// The utterance and a successful text answer are appended to history;
// tool call and result messages only live for the duration of the turn.
func (l *Loop) RunConversation(ctx context.Context, utterance string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	defer l.emit(workflow.DoneEvent{})

	l.history.Add(string(provider.RoleUser), utterance)

	req := &provider.Request{
		SystemInstruction: l.cfg.SystemInstruction,
		Messages:          toProviderMessages(l.history.Recent(l.cfg.ContextMessages)),
		MaxOutputTokens:   l.cfg.MaxOutputTokens,
		Temperature:       &l.cfg.Temperature,
	}
	if decls := l.tools.Declarations(); len(decls) > 0 {
		req.Tools = decls
	}

	for i := 0; i < l.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			l.log.Warn().Err(err).Msg("turn cancelled")
			return MsgUnavailable
		}

		l.emit(workflow.ThinkingEvent{})

		resp, err := l.provider.Generate(ctx, req)
		if err != nil {
			return l.handleError(ctx, err)
		}

		if len(resp.ToolCalls) == 0 {
			text := strings.TrimSpace(resp.Content)
			if text == "" {
				return MsgNoAnswer
			}
			l.history.Add(string(provider.RoleAssistant), text)
			l.emit(workflow.TextEvent{Text: text})
			return text
		}

		l.log.Debug().Int("iteration", i+1).Int("calls", len(resp.ToolCalls)).Msg("executing tool calls")

		call := *resp
		call.ToolCalls = make([]provider.ToolCall, len(resp.ToolCalls))
		for j, tc := range resp.ToolCalls {
			if tc.ID == "" {
				tc.ID = uuid.NewString()
			}
			call.ToolCalls[j] = tc
		}
		req.Messages = append(req.Messages, call)

		for _, tc := range call.ToolCalls {
			req.Messages = append(req.Messages, l.tools.Execute(ctx, tc, l.events))
		}
	}

	l.log.Warn().Int("max_iterations", l.cfg.MaxIterations).Msg("turn exhausted iteration budget")
	return MsgTooManySteps
}

func (l *Loop) handleError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, provider.ErrNoCandidates):
		return MsgNoCandidates
	case errors.Is(err, provider.ErrEmptyResponse):
		return MsgEmptyResponse
	}

	if name, args, ok := extractFailedCall(err.Error()); ok {
		l.log.Info().Str("tool", name).Msg("recovered malformed tool call")
		return l.runRecovered(ctx, name, args)
	}

	if provider.IsRateLimited(err) {
		l.log.Warn().Err(err).Msg("model rate limited")
		if wait := provider.RetryAfter(err); wait > 0 {
			return fmt.Sprintf(rateLimitedFmt, int((wait+time.Second-1)/time.Second))
		}
		return MsgRateLimited
	}

	l.log.Error().Err(err).Msg("model call failed")
	return MsgUnavailable
}

func (l *Loop) emit(ev workflow.Event) {
	if l.events != nil {
		l.events <- ev
	}
}

func toProviderMessages(entries []history.Message) []provider.Message {
	out := make([]provider.Message, 0, len(entries))
	for _, e := range entries {
		role := provider.Role(e.Role)
		switch role {
		case provider.RoleUser, provider.RoleAssistant:
		default:
			// system and tool entries are replayed as user-side context
			role = provider.RoleUser
		}
		out = append(out, provider.Message{Role: role, Content: e.Content})
	}
	return out
}
