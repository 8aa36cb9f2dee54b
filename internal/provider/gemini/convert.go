package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// toGeminiContents converts conversation messages to Gemini Content format.
// Consecutive tool results are grouped into one user turn.
func toGeminiContents(messages []provider.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		if msg.Role == provider.RoleTool {
			part := &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:   msg.ToolCallID,
					Name: msg.ToolName,
					Response: map[string]any{
						"output": msg.Content,
					},
				},
			}
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
			} else {
				contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{part}})
			}
			continue
		}

		content, err := messageToGeminiContent(msg)
		if err != nil {
			return nil, err
		}
		if content != nil {
			contents = append(contents, content)
		}
	}

	return contents, nil
}

func isFunctionResponseTurn(c *genai.Content) bool {
	return c.Role == "user" && len(c.Parts) > 0 && c.Parts[0].FunctionResponse != nil
}

// messageToGeminiContent converts a user or assistant message.
func messageToGeminiContent(msg provider.Message) (*genai.Content, error) {
	role := "user"
	if msg.Role == provider.RoleAssistant {
		role = "model"
	}

	parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls))

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if len(tc.Function.Arguments) > 0 && string(tc.Function.Arguments) != "null" {
			if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
				return nil, fmt.Errorf("tool call %s arguments: %w", tc.Function.Name, err)
			}
		}
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}

	// Skip empty messages
	if len(parts) == 0 {
		return nil, nil
	}

	return &genai.Content{Role: role, Parts: parts}, nil
}

// toGeminiConfig converts the request settings to Gemini config.
func toGeminiConfig(req *provider.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
		Temperature:    req.Temperature,
	}

	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}

	return config
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to a single Gemini tool.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))

	for _, d := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
		}
		if d.Parameters != nil && len(d.Parameters.Properties) > 0 {
			fd.Parameters = toGeminiSchema(d.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool schema to Gemini Schema recursively.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGeminiSchema(s.Items),
	}

	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}

	return schema
}

// toGeminiType converts a schema type to Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to an assistant message.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*provider.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, provider.ErrNoCandidates
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.Error{
			Code:       provider.ErrorCodeContentBlocked,
			Message:    "content blocked by safety filters",
			Underlying: provider.ErrContentBlocked,
		}
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, provider.ErrEmptyResponse
	}

	msg := &provider.Message{Role: provider.RoleAssistant}
	var text strings.Builder

	for _, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			tc, err := toToolCall(part.FunctionCall)
			if err != nil {
				return nil, err
			}
			msg.ToolCalls = append(msg.ToolCalls, tc)
		case part.Text != "" && !part.Thought:
			text.WriteString(part.Text)
		}
	}

	// Text produced alongside tool calls is kept; a MaxTokens finish
	// returns whatever text was generated.
	msg.Content = text.String()
	return msg, nil
}

func toToolCall(fc *genai.FunctionCall) (provider.ToolCall, error) {
	id := fc.ID
	if id == "" {
		id = uuid.NewString()
	}
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return provider.ToolCall{}, fmt.Errorf("encode %s arguments: %w", fc.Name, err)
	}
	return provider.ToolCall{
		ID:       id,
		Function: provider.FunctionCall{Name: fc.Name, Arguments: raw},
	}, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return &provider.Error{
			Code:       provider.ErrorCodeNetwork,
			Message:    "network error",
			Underlying: err,
		}
	}

	switch apiErr.Code {
	case 401, 403:
		return &provider.Error{
			Code:       provider.ErrorCodeAuth,
			Message:    "authentication failed",
			Underlying: err,
		}
	case 429:
		return &provider.Error{
			Code:       provider.ErrorCodeRateLimit,
			Message:    "rate limit exceeded",
			Underlying: err,
			RetryAfter: parseRetryAfter(apiErr),
		}
	case 400:
		return &provider.Error{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
			Underlying: err,
		}
	case 500, 502, 503, 504:
		return &provider.Error{
			Code:       provider.ErrorCodeUnavailable,
			Message:    "service unavailable",
			Underlying: err,
		}
	default:
		return &provider.Error{
			Code:       provider.ErrorCodeNetwork,
			Message:    fmt.Sprintf("API error: %s", apiErr.Message),
			Underlying: err,
		}
	}
}

func asAPIError(err error) (*genai.APIError, bool) {
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr, true
	}
	var val genai.APIError
	if errors.As(err, &val) {
		return &val, true
	}
	return nil, false
}

// parseRetryAfter reads google.rpc.RetryInfo style delays from error details.
func parseRetryAfter(apiErr *genai.APIError) time.Duration {
	if apiErr == nil {
		return 0
	}
	for _, detail := range apiErr.Details {
		for _, key := range []string{"retryDelay", "retry_after", "retryAfter"} {
			if v, ok := detail[key]; ok {
				if d := parseRetryValue(v); d > 0 {
					return d
				}
			}
		}
	}
	return 0
}

func parseRetryValue(v any) time.Duration {
	var d time.Duration
	switch val := v.(type) {
	case int:
		d = time.Duration(val) * time.Second
	case int64:
		d = time.Duration(val) * time.Second
	case float64:
		d = time.Duration(val * float64(time.Second))
	case string:
		if parsed, err := time.ParseDuration(val); err == nil {
			d = parsed
		} else if secs, err := strconv.ParseFloat(val, 64); err == nil {
			d = time.Duration(secs * float64(time.Second))
		} else {
			return 0
		}
	default:
		return 0
	}
	return max(d, 0)
}
