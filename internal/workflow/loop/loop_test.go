package loop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cyclone1070/anu/internal/history"
	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/provider/groq"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/Cyclone1070/anu/internal/workflow/toolmanager"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	calls        int
	requests     []provider.Request
	generateFunc func(ctx context.Context, req *provider.Request) (*provider.Message, error)
}

func (m *mockProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Message, error) {
	m.calls++
	snapshot := *req
	snapshot.Messages = append([]provider.Message(nil), req.Messages...)
	m.requests = append(m.requests, snapshot)
	return m.generateFunc(ctx, req)
}

type searchRequest struct {
	Q string `json:"q"`
}

func searchSkill(calls *int) tool.Skill {
	return tool.NewSet("search",
		tool.Typed(tool.Declaration{
			Name:        "search_x",
			Description: "Searches for x",
			Parameters:  tool.Object(map[string]*tool.Schema{"q": tool.String("query")}, "q"),
		}, func(ctx context.Context, req searchRequest) (string, error) {
			*calls++
			return "found " + req.Q, nil
		}),
	)
}

func toolCallReply(name, args string) *provider.Message {
	return &provider.Message{
		Role: provider.RoleAssistant,
		ToolCalls: []provider.ToolCall{
			{ID: "c1", Function: provider.FunctionCall{Name: name, Arguments: json.RawMessage(args)}},
		},
	}
}

func newTestLoop(t *testing.T, p llmProvider, skills ...tool.Skill) (*Loop, *history.History) {
	t.Helper()
	h := history.New(filepath.Join(t.TempDir(), "history.json"), 100, zerolog.Nop())
	tm := toolmanager.NewToolManager(zerolog.Nop(), skills...)
	cfg := DefaultConfig()
	cfg.SystemInstruction = "You are ANU."
	return NewLoop(p, tm, h, nil, cfg, zerolog.Nop()), h
}

func TestRunConversation_TextOnly(t *testing.T) {
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return &provider.Message{Role: provider.RoleAssistant, Content: "Hello!"}, nil
		},
	}
	l, h := newTestLoop(t, mp)

	reply := l.RunConversation(context.Background(), "hi")

	assert.Equal(t, "Hello!", reply)
	assert.Equal(t, 1, mp.calls)
	assert.Equal(t, "You are ANU.", mp.requests[0].SystemInstruction)
	assert.Equal(t, int32(200), mp.requests[0].MaxOutputTokens)
	require.Len(t, h.All(), 2)
}

func TestRunConversation_OneDispatchThenText(t *testing.T) {
	searches := 0
	mp := &mockProvider{}
	mp.generateFunc = func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
		if mp.calls == 1 {
			return toolCallReply("search_x", `{"q":"a"}`), nil
		}
		last := req.Messages[len(req.Messages)-1]
		return &provider.Message{Role: provider.RoleAssistant, Content: "result: " + last.Content}, nil
	}
	l, h := newTestLoop(t, mp, searchSkill(&searches))

	reply := l.RunConversation(context.Background(), "find a")

	assert.Equal(t, "result: found a", reply)
	assert.Equal(t, 1, searches)
	assert.Equal(t, 2, mp.calls)

	second := mp.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, provider.RoleUser, second[0].Role)
	assert.Equal(t, provider.RoleAssistant, second[1].Role)
	assert.Len(t, second[1].ToolCalls, 1)
	assert.Equal(t, provider.RoleTool, second[2].Role)
	assert.Equal(t, "c1", second[2].ToolCallID)

	all := h.All()
	require.Len(t, all, 2)
	assert.Equal(t, "user", all[0].Role)
	assert.Equal(t, "find a", all[0].Content)
	assert.Equal(t, "assistant", all[1].Role)
	assert.Equal(t, "result: found a", all[1].Content)
}

func TestRunConversation_ExhaustsAtMaxIterations(t *testing.T) {
	searches := 0
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return toolCallReply("search_x", `{"q":"again"}`), nil
		},
	}
	l, h := newTestLoop(t, mp, searchSkill(&searches))

	reply := l.RunConversation(context.Background(), "loop forever")

	assert.Equal(t, MsgTooManySteps, reply)
	assert.Equal(t, 10, mp.calls)
	assert.Equal(t, 10, searches)
	require.Len(t, h.All(), 1)
}

func TestRunConversation_NoSkillsOmitsTools(t *testing.T) {
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return &provider.Message{Role: provider.RoleAssistant, Content: "ok"}, nil
		},
	}
	l, _ := newTestLoop(t, mp)

	l.RunConversation(context.Background(), "hi")

	assert.Nil(t, mp.requests[0].Tools)
}

func TestRunConversation_AdvertisesTools(t *testing.T) {
	searches := 0
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return &provider.Message{Role: provider.RoleAssistant, Content: "ok"}, nil
		},
	}
	l, _ := newTestLoop(t, mp, searchSkill(&searches))

	l.RunConversation(context.Background(), "hi")

	require.Len(t, mp.requests[0].Tools, 1)
	assert.Equal(t, "search_x", mp.requests[0].Tools[0].Name)
}

func TestRunConversation_UnknownToolContinues(t *testing.T) {
	searches := 0
	mp := &mockProvider{}
	mp.generateFunc = func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
		if mp.calls == 1 {
			return toolCallReply("does_not_exist", `{}`), nil
		}
		return &provider.Message{Role: provider.RoleAssistant, Content: "sorry"}, nil
	}
	l, _ := newTestLoop(t, mp, searchSkill(&searches))

	reply := l.RunConversation(context.Background(), "do it")

	assert.Equal(t, "sorry", reply)
	require.Equal(t, 2, mp.calls)
	msgs := mp.requests[1].Messages
	result := msgs[len(msgs)-1]
	assert.Equal(t, provider.RoleTool, result.Role)
	assert.Contains(t, result.Content, toolmanager.ErrorMarker)
}

func TestRunConversation_ContextWindow(t *testing.T) {
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return &provider.Message{Role: provider.RoleAssistant, Content: "ack"}, nil
		},
	}
	l, _ := newTestLoop(t, mp)

	for i := 0; i < 5; i++ {
		l.RunConversation(context.Background(), fmt.Sprintf("u%d", i))
	}

	last := mp.requests[len(mp.requests)-1].Messages
	require.Len(t, last, 6)
	assert.Equal(t, "u4", last[5].Content)
	assert.Equal(t, provider.RoleUser, last[5].Role)
	assert.Equal(t, "ack", last[0].Content)
	assert.Equal(t, provider.RoleAssistant, last[0].Role)
	assert.Equal(t, "u2", last[1].Content)
}

func TestRunConversation_TransportErrorApologises(t *testing.T) {
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return nil, &provider.Error{Code: provider.ErrorCodeNetwork, Message: "network error", Underlying: errors.New("dial tcp")}
		},
	}
	l, h := newTestLoop(t, mp)

	reply := l.RunConversation(context.Background(), "hi")

	assert.Equal(t, MsgUnavailable, reply)
	assert.Len(t, h.All(), 1)
}

func TestRunConversation_DegradedResponses(t *testing.T) {
	tests := []struct {
		name string
		resp *provider.Message
		err  error
		want string
	}{
		{name: "no candidates", err: provider.ErrNoCandidates, want: MsgNoCandidates},
		{name: "empty content", err: fmt.Errorf("gemini: %w", provider.ErrEmptyResponse), want: MsgEmptyResponse},
		{name: "blank text", resp: &provider.Message{Role: provider.RoleAssistant, Content: "  "}, want: MsgNoAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := &mockProvider{
				generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
					return tt.resp, tt.err
				},
			}
			l, _ := newTestLoop(t, mp)

			assert.Equal(t, tt.want, l.RunConversation(context.Background(), "hi"))
		})
	}
}

func TestRunConversation_RateLimited(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
		want  string
	}{
		{name: "no delay", want: MsgRateLimited},
		{name: "whole seconds", delay: 20 * time.Second, want: "I'm getting too many requests right now. Please try again in 20 seconds."},
		{name: "rounds up", delay: 1500 * time.Millisecond, want: "I'm getting too many requests right now. Please try again in 2 seconds."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := &mockProvider{
				generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
					return nil, fmt.Errorf("groq: %w", &provider.Error{
						Code:       provider.ErrorCodeRateLimit,
						Message:    "rate limit exceeded",
						RetryAfter: tt.delay,
					})
				},
			}
			l, h := newTestLoop(t, mp)

			assert.Equal(t, tt.want, l.RunConversation(context.Background(), "hi"))
			assert.Equal(t, 1, mp.calls)
			assert.Len(t, h.All(), 1)
		})
	}
}

func TestRunConversation_RecoversMalformedToolCall(t *testing.T) {
	searches := 0
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return nil, &provider.Error{
				Code:    provider.ErrorCodeToolUseFailed,
				Message: "Failed to call a function",
				Body:    `{"error":{"code":"tool_use_failed","failed_generation":"<function=search_x{\"q\": \"a\"}></function>"}}`,
			}
		},
	}
	l, h := newTestLoop(t, mp, searchSkill(&searches))

	reply := l.RunConversation(context.Background(), "look up a")

	assert.Equal(t, "found a", reply)
	assert.Equal(t, 1, searches)
	assert.Len(t, h.All(), 1)
}

func TestRunConversation_RecoversGroqToolUseFailed(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to call a function. Please adjust your prompt. See 'failed_generation' for more details.","type":"invalid_request_error","code":"tool_use_failed","failed_generation":"<function=search_x{\"q\": \"a\"}</function>"}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := groq.New(context.Background(), groq.Options{APIKey: "test-key", BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	searches := 0
	l, h := newTestLoop(t, client, searchSkill(&searches))

	reply := l.RunConversation(context.Background(), "look up a")

	assert.Equal(t, "found a", reply)
	assert.Equal(t, 1, searches)
	assert.Equal(t, 1, requests)
	assert.Len(t, h.All(), 1)
}

func TestRunConversation_RecoveredToolMissing(t *testing.T) {
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return nil, errors.New(`tool_use_failed: <function=ghost{"q":"a"}</function>`)
		},
	}
	l, _ := newTestLoop(t, mp)

	reply := l.RunConversation(context.Background(), "boo")

	assert.Contains(t, reply, "Error executing recovered tool")
}

func TestRunConversation_EmitsEvents(t *testing.T) {
	events := make(chan workflow.Event, 10)
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return &provider.Message{Role: provider.RoleAssistant, Content: "Hello!"}, nil
		},
	}
	h := history.New(filepath.Join(t.TempDir(), "h.json"), 10, zerolog.Nop())
	l := NewLoop(mp, toolmanager.NewToolManager(zerolog.Nop()), h, events, DefaultConfig(), zerolog.Nop())

	l.RunConversation(context.Background(), "hi")

	assert.IsType(t, workflow.ThinkingEvent{}, <-events)
	assert.Equal(t, workflow.TextEvent{Text: "Hello!"}, <-events)
	assert.IsType(t, workflow.DoneEvent{}, <-events)
}

func TestRunConversation_CancelledContext(t *testing.T) {
	mp := &mockProvider{
		generateFunc: func(ctx context.Context, req *provider.Request) (*provider.Message, error) {
			return &provider.Message{Content: "unreachable"}, nil
		},
	}
	l, _ := newTestLoop(t, mp)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, MsgUnavailable, l.RunConversation(ctx, "hi"))
	assert.Equal(t, 0, mp.calls)
}
