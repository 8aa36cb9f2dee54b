// Package groq talks to Groq's OpenAI-compatible chat completions endpoint.
package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/tool"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible API root.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is used when no model is configured.
	DefaultModel = "llama-3.3-70b-versatile"

	defaultTimeout = 60 * time.Second
)

// Options configures a Client. Empty fields take the defaults.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is a Groq chat client.
type Client struct {
	chat model.ToolCallingChatModel

	mu    sync.RWMutex
	model string
}

// New creates a client backed by the OpenAI chat model component.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	chat, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		APIKey:  opts.APIKey,
		BaseURL: opts.BaseURL,
		Model:   opts.Model,
		Timeout: opts.Timeout,
		HTTPClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &recorder{next: http.DefaultTransport},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create groq chat model: %w", err)
	}

	return &Client{chat: chat, model: opts.Model}, nil
}

// Model returns the active model name.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel changes the active model.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// Generate sends a chat completion request.
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Message, error) {
	chat := c.chat
	if len(req.Tools) > 0 {
		bound, err := c.chat.WithTools(toToolInfos(req.Tools))
		if err != nil {
			return nil, fmt.Errorf("bind tools: %w", err)
		}
		chat = bound
	}

	opts := []model.Option{model.WithModel(c.Model())}
	if req.MaxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(int(req.MaxOutputTokens)))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}

	ctx, ex := withExchange(ctx)
	out, err := chat.Generate(ctx, toSchemaMessages(req), opts...)
	if err != nil {
		return nil, mapError(ex, err)
	}
	return fromSchemaMessage(out)
}

func toSchemaMessages(req *provider.Request) []*schema.Message {
	out := make([]*schema.Message, 0, len(req.Messages)+1)
	if req.SystemInstruction != "" {
		out = append(out, schema.SystemMessage(req.SystemInstruction))
	}
	for _, m := range req.Messages {
		out = append(out, toSchemaMessage(m))
	}
	return out
}

func toSchemaMessage(m provider.Message) *schema.Message {
	switch m.Role {
	case provider.RoleTool:
		return schema.ToolMessage(m.Content, m.ToolCallID)
	case provider.RoleSystem:
		return schema.SystemMessage(m.Content)
	case provider.RoleAssistant:
		var calls []schema.ToolCall
		for _, tc := range m.ToolCalls {
			args := string(tc.Function.Arguments)
			if args == "" {
				args = "{}"
			}
			calls = append(calls, schema.ToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: schema.FunctionCall{Name: tc.Function.Name, Arguments: args},
			})
		}
		return schema.AssistantMessage(m.Content, calls)
	default:
		return schema.UserMessage(m.Content)
	}
}

func fromSchemaMessage(m *schema.Message) (*provider.Message, error) {
	if m == nil {
		return nil, provider.ErrNoCandidates
	}

	msg := &provider.Message{Role: provider.RoleAssistant, Content: m.Content}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
			ID: tc.ID,
			Function: provider.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			},
		})
	}

	if msg.Content == "" && len(msg.ToolCalls) == 0 {
		return nil, provider.ErrEmptyResponse
	}
	return msg, nil
}

func toToolInfos(decls []tool.Declaration) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(decls))
	for _, d := range decls {
		params := map[string]*schema.ParameterInfo{}
		if d.Parameters != nil {
			params = toParams(d.Parameters)
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        d.Name,
			Desc:        d.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// toParams converts the properties of an object schema.
func toParams(s *tool.Schema) map[string]*schema.ParameterInfo {
	params := make(map[string]*schema.ParameterInfo, len(s.Properties))
	for name, prop := range s.Properties {
		params[name] = toParam(prop)
	}
	for _, name := range s.Required {
		if p, ok := params[name]; ok {
			p.Required = true
		}
	}
	return params
}

func toParam(s *tool.Schema) *schema.ParameterInfo {
	p := &schema.ParameterInfo{
		Type: schema.DataType(s.Type),
		Desc: s.Description,
		Enum: s.Enum,
	}
	switch s.Type {
	case tool.TypeObject:
		p.SubParams = toParams(s)
	case tool.TypeArray:
		if s.Items != nil {
			p.ElemInfo = toParam(s.Items)
		}
	}
	return p
}

// mapError converts a failed call into a provider error using what the
// transport saw. A rejected tool call carries the model's generation in
// the raw body, so the body is kept.
func mapError(ex *exchange, err error) error {
	if ex.status == 0 {
		return &provider.Error{
			Code:       provider.ErrorCodeNetwork,
			Message:    "network error",
			Underlying: err,
		}
	}
	if ex.status < http.StatusBadRequest {
		return errors.Join(provider.ErrNoCandidates, err)
	}

	env := parseEnvelope(ex.body)
	message := env.Error.Message
	if message == "" {
		message = http.StatusText(ex.status)
	}

	perr := &provider.Error{
		Message:    message,
		Body:       string(ex.body),
		Underlying: err,
	}

	switch {
	case env.Error.Code == string(provider.ErrorCodeToolUseFailed) || env.Error.FailedGeneration != "":
		perr.Code = provider.ErrorCodeToolUseFailed
	case ex.status == http.StatusUnauthorized || ex.status == http.StatusForbidden:
		perr.Code = provider.ErrorCodeAuth
		perr.Underlying = errors.Join(err, provider.ErrAuthentication)
	case ex.status == http.StatusTooManyRequests:
		perr.Code = provider.ErrorCodeRateLimit
		perr.RetryAfter = parseRetryAfter(ex.retryAfter)
	case ex.status >= http.StatusInternalServerError:
		perr.Code = provider.ErrorCodeUnavailable
	case env.Error.Code == string(provider.ErrorCodeContextLength):
		perr.Code = provider.ErrorCodeContextLength
	default:
		perr.Code = provider.ErrorCodeInvalidRequest
	}

	return perr
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v + "s"); err == nil && d > 0 {
		return d
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return 0
}
