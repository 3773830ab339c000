// internal/llm/providers/openai/openai.go
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Corphon/ScriptBreakdown/internal/llm"
)

// Name is the registry key of this provider
const Name = "openai"

const defaultModel = "gpt-4o-mini"

func init() {
	llm.Register(Name, func() llm.Provider {
		return &Provider{
			models: []string{
				"gpt-4o",
				"gpt-4o-mini",
				"gpt-4.1",
			},
		}
	})
}

// Provider talks to any OpenAI-compatible chat completions endpoint
type Provider struct {
	client       *openai.Client
	defaultModel string
	models       []string
}

func (p *Provider) Initialize(config llm.Config) error {
	if config.APIKey == "" {
		return errors.New("openai api key not provided")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}
	p.client = openai.NewClientWithConfig(clientConfig)

	p.defaultModel = defaultModel
	if config.DefaultModel != "" {
		p.defaultModel = config.DefaultModel
	}
	return nil
}

func (p *Provider) GetName() string {
	return "openai compatible"
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
		return nil, errors.New("openai provider not initialized")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}

	switch {
	case req.ResponseJSONSchema != nil:
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: req.ResponseJSONSchema,
				Strict: true,
			},
		}
	case req.ResponseMIMEType == "application/json":
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	completion, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	return &llm.CompletionResponse{
		Text:         completion.Choices[0].Message.Content,
		FinishReason: string(completion.Choices[0].FinishReason),
		TokensUsed:   completion.Usage.TotalTokens,
		PromptTokens: completion.Usage.PromptTokens,
		OutputTokens: completion.Usage.CompletionTokens,
		ModelName:    model,
		ProviderName: p.GetName(),
	}, nil
}
