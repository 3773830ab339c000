// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/llm"
	"github.com/Corphon/ScriptBreakdown/internal/utils"
)

// Config is the process configuration read from the environment
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	DebugMode bool   `envconfig:"DEBUG_MODE" default:"false"`

	// LLM
	LLMProvider  string `envconfig:"LLM_PROVIDER" default:"google"`
	LLMModel     string `envconfig:"LLM_MODEL"`
	LLMBaseURL   string `envconfig:"LLM_BASE_URL"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GenericKey   string `envconfig:"API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	GenerationTimeout   time.Duration `envconfig:"GENERATION_TIMEOUT" default:"120s"`
	SessionTTL          time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SubmitRatePerMinute int           `envconfig:"SUBMIT_RATE_PER_MINUTE" default:"10"`
	ShutdownTimeout     time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// TrustedProxies lists the proxies whose X-Forwarded-For is honored;
	// empty means the peer address is the client address
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogFile     string `envconfig:"LOG_FILE"`
}

// Load reads the configuration like Read and validates the result
func Load(envFiles ...string) (*Config, error) {
	cfg, err := Read(envFiles...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads the optional env files (".env" when none are given), then the
// process environment, without validating. Callers that override fields
// afterwards call Validate themselves.
func Read(envFiles ...string) (*Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	return &cfg, nil
}

// APIKey returns the credential for the selected provider.
// API_KEY is accepted as a fallback for either provider.
func (c *Config) APIKey() string {
	var key string
	switch c.LLMProvider {
	case "google":
		key = c.GeminiAPIKey
	case "openai":
		key = c.OpenAIAPIKey
	}
	if key == "" {
		key = c.GenericKey
	}
	return strings.TrimSpace(key)
}

// Validate fails fast on settings the server cannot run with
func (c *Config) Validate() error {
	if !llm.IsRegistered(c.LLMProvider) {
		return apperrors.NewConfigError(
			fmt.Sprintf("unsupported LLM_PROVIDER %q (want one of %s)", c.LLMProvider, strings.Join(llm.ListProviders(), ", ")), nil)
	}
	if c.APIKey() == "" {
		return apperrors.NewConfigError(
			fmt.Sprintf("no API key configured for provider %q", c.LLMProvider), nil)
	}
	if c.GenerationTimeout <= 0 {
		return apperrors.NewConfigError("GENERATION_TIMEOUT must be positive", nil)
	}
	if c.SessionTTL <= 0 {
		return apperrors.NewConfigError("SESSION_TTL must be positive", nil)
	}
	if c.SubmitRatePerMinute < 0 {
		return apperrors.NewConfigError("SUBMIT_RATE_PER_MINUTE must not be negative", nil)
	}
	return nil
}

// LLMConfig builds the provider configuration
func (c *Config) LLMConfig() llm.Config {
	return llm.Config{
		APIKey:       c.APIKey(),
		BaseURL:      c.LLMBaseURL,
		DefaultModel: c.LLMModel,
	}
}

// LogConfig builds the logger configuration
func (c *Config) LogConfig() utils.LogConfig {
	level := c.LogLevel
	if c.DebugMode {
		level = "debug"
	}
	return utils.LogConfig{
		Level:      level,
		Encoding:   c.LogEncoding,
		OutputPath: c.LogFile,
	}
}

// Address is the listen address for the HTTP server
func (c *Config) Address() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
