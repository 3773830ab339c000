// internal/llm/interface.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"google.golang.org/genai"
)

// ErrUnknownProvider is returned for a name nobody registered
var ErrUnknownProvider = errors.New("unknown llm provider")

// CompletionRequest is a single-shot structured completion request.
// Providers pick the schema form they understand.
type CompletionRequest struct {
	Prompt           string  `json:"prompt"`
	Model            string  `json:"model,omitempty"`
	Temperature      float32 `json:"temperature,omitempty"`
	ResponseMIMEType string  `json:"response_mime_type,omitempty"`
	SchemaName       string  `json:"schema_name,omitempty"`

	// ResponseSchema is the Gemini form of the output schema
	ResponseSchema *genai.Schema `json:"-"`
	// ResponseJSONSchema is the standard JSON Schema form of the same contract
	ResponseJSONSchema json.Marshaler `json:"-"`
}

// CompletionResponse is the provider-neutral reply
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Config carries what a provider needs to reach its API
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	HTTPClient   *http.Client
}

// Provider is implemented by every remote generation backend
type Provider interface {
	// Initialize prepares the client; it fails when the key is missing
	Initialize(config Config) error

	GetName() string

	// DefaultModel is used when a request leaves Model empty
	DefaultModel() string

	GetSupportedModels() []string

	// CompleteText sends one prompt and returns the raw response text.
	// Transport failures are returned unclassified.
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderFactory builds an uninitialized provider
type ProviderFactory func() Provider

var (
	registryMu sync.RWMutex
	providers  = make(map[string]ProviderFactory)
)

// Register adds a provider factory under name, replacing any previous one
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providers[name] = factory
}

// GetProvider builds and initializes the named provider
func GetProvider(name string, config Config) (Provider, error) {
	registryMu.RLock()
	factory, exists := providers[name]
	registryMu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}
	return provider, nil
}

// ListProviders returns the registered names in sorted order
func ListProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name has a factory
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := providers[name]
	return ok
}

// GetSupportedModelsForProvider lists the models a registered provider
// knows about without initializing it
func GetSupportedModelsForProvider(name string) []string {
	registryMu.RLock()
	factory, exists := providers[name]
	registryMu.RUnlock()
	if !exists {
		return []string{}
	}
	return factory().GetSupportedModels()
}
