// internal/llm/providers/google/google.go
package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/Corphon/ScriptBreakdown/internal/llm"
)

// Name is the registry key of this provider
const Name = "google"

const defaultModel = "gemini-2.5-pro"

func init() {
	llm.Register(Name, func() llm.Provider {
		return &Provider{
			models: []string{
				"gemini-2.5-pro",
				"gemini-2.5-flash",
			},
		}
	})
}

// Provider talks to the Gemini API through the genai SDK
type Provider struct {
	client       *genai.Client
	defaultModel string
	models       []string
}

func (p *Provider) Initialize(config llm.Config) error {
	if config.APIKey == "" {
		return errors.New("google api key not provided")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return fmt.Errorf("create genai client: %w", err)
	}
	p.client = client

	p.defaultModel = defaultModel
	if config.DefaultModel != "" {
		p.defaultModel = config.DefaultModel
	}
	return nil
}

func (p *Provider) GetName() string {
	return "google gemini"
}

func (p *Provider) DefaultModel() string {
	if p.defaultModel == "" {
		return defaultModel
	}
	return p.defaultModel
}

func (p *Provider) GetSupportedModels() []string {
	return append([]string(nil), p.models...)
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if p.client == nil {
		return nil, errors.New("google provider not initialized")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		ResponseMIMEType: req.ResponseMIMEType,
		ResponseSchema:   req.ResponseSchema,
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, fmt.Errorf("google gemini: %w", err)
	}

	resp := &llm.CompletionResponse{
		Text:         result.Text(),
		ModelName:    model,
		ProviderName: p.GetName(),
	}
	if len(result.Candidates) > 0 {
		resp.FinishReason = string(result.Candidates[0].FinishReason)
	}
	if usage := result.UsageMetadata; usage != nil {
		resp.PromptTokens = int(usage.PromptTokenCount)
		resp.OutputTokens = int(usage.CandidatesTokenCount)
		resp.TokensUsed = int(usage.TotalTokenCount)
	}
	return resp, nil
}
