package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	_ "github.com/Corphon/ScriptBreakdown/internal/llm/providers/google"
	_ "github.com/Corphon/ScriptBreakdown/internal/llm/providers/openai"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DEBUG_MODE", "LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL",
		"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY", "GENERATION_TIMEOUT",
		"SESSION_TTL", "SUBMIT_RATE_PER_MINUTE", "SHUTDOWN_TIMEOUT",
		"LOG_LEVEL", "LOG_ENCODING", "LOG_FILE", "TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// missing points godotenv at a file that does not exist so a stray .env is ignored
func missing(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load(missing(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "google", cfg.LLMProvider)
	assert.Equal(t, "gem-key", cfg.APIKey())
	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.SubmitRatePerMinute)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogConfig().Level)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadTrustedProxies(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,192.168.0.0/16")

	cfg, err := Load(missing(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)
}

func TestLoadFallsBackToGenericKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "generic")
	t.Setenv("LLM_PROVIDER", "OpenAI")

	cfg, err := Load(missing(t))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "generic", cfg.LLMConfig().APIKey)
}

func TestLoadMissingKeyIsConfigError(t *testing.T) {
	clearEnv(t)

	_, err := Load(missing(t))

	require.Error(t, err)
	assert.True(t, apperrors.IsConfigError(err))
}

func TestLoadUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("LLM_PROVIDER", "ollama")

	_, err := Load(missing(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM_PROVIDER")
	assert.Contains(t, err.Error(), "google, openai")
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-file\nDEBUG_MODE=true\nPORT=127.0.0.1:9000\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("DEBUG_MODE")
		os.Unsetenv("PORT")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.APIKey())
	assert.Equal(t, "debug", cfg.LogConfig().Level)
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}

func TestValidateRejectsBadDurations(t *testing.T) {
	cfg := &Config{LLMProvider: "google", GeminiAPIKey: "k", SessionTTL: time.Minute}
	assert.Error(t, cfg.Validate())
}

func TestReadSkipsValidation(t *testing.T) {
	clearEnv(t)

	cfg, err := Read(missing(t))
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey())

	cfg.OpenAIAPIKey = "sk-test"
	cfg.LLMProvider = "openai"
	assert.NoError(t, cfg.Validate())
}
