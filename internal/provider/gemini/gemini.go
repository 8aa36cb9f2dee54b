package gemini

import (
	"context"
	"sync"

	"github.com/Cyclone1070/anu/internal/provider"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// GeminiProvider implements provider.Provider for Google Gemini.
type GeminiProvider struct {
	client    GeminiClient
	modelName string
	mu        sync.RWMutex
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends a request to the Gemini API and returns the reply.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Message, error) {
	model := p.Model()

	contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, &provider.Error{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    "cannot encode conversation",
			Underlying: err,
		}
	}

	resp, err := p.client.GenerateContent(ctx, model, contents, toGeminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}

// SetModel changes the active model at runtime.
func (p *GeminiProvider) SetModel(model string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelName = model
}

// Model returns the currently active model name.
func (p *GeminiProvider) Model() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelName
}

// ListModels returns the chat models available to the API key.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return models, nil
}
