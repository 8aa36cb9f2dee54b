package gemini

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

// ModelInfo contains metadata about a Gemini model from the SDK
type ModelInfo struct {
	Name             string
	InputTokenLimit  int
	OutputTokenLimit int
}

// GeminiClient defines the interface for interacting with the Gemini API.
type GeminiClient interface {
	// GenerateContent sends a request to the Gemini API and returns the response
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

	// ListModels returns a list of available model information
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// RealGeminiClient wraps the official SDK client to satisfy GeminiClient.
type RealGeminiClient struct {
	client *genai.Client
}

// NewRealGeminiClient creates a new RealGeminiClient from an SDK client.
func NewRealGeminiClient(client *genai.Client) *RealGeminiClient {
	return &RealGeminiClient{client: client}
}

// NewClientFromAPIKey builds an SDK client for the Gemini Developer API.
func NewClientFromAPIKey(ctx context.Context, apiKey string) (*RealGeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return NewRealGeminiClient(client), nil
}

// GenerateContent calls the SDK's GenerateContent method.
func (c *RealGeminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}

// ListModels returns the text-capable gemini-* models
// (excluding embedding, image, audio, live, and robotic models)
func (c *RealGeminiClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	for model, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		if !isChatModel(model.Name) {
			continue
		}
		models = append(models, ModelInfo{
			Name:             strings.TrimPrefix(model.Name, "models/"),
			InputTokenLimit:  int(model.InputTokenLimit),
			OutputTokenLimit: int(model.OutputTokenLimit),
		})
	}
	return models, nil
}

func isChatModel(name string) bool {
	if !strings.HasPrefix(name, "models/gemini-") {
		return false
	}
	for _, excluded := range []string{"embedding", "image", "audio", "live", "robotic", "tts"} {
		if strings.Contains(name, excluded) {
			return false
		}
	}
	return true
}
