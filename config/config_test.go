package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"MODEL_PROVIDER", "MODEL_API_KEY", "GOOGLE_API_KEY", "DEEPSEEK_API_KEY", "MODEL_NAME",
	"MODEL_BASE_URL", "REQUEST_TIMEOUT", "MAX_RETRIES", "RETRY_BACKOFF", "PROMPT_TIMESTAMP",
	"PORT", "GIN_MODE", "MAX_IMAGE_BYTES", "HISTORY_DB", "STUB_RESPONSE", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "", cfg.APIKey)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, "8090", cfg.Port)
	assert.True(t, cfg.HistoryEnabled())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "classifier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: deepseek
model: deepseek-reasoner
request_timeout: 15s
max_retries: 0
port: "9000"
history_db: "off"
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("DEEPSEEK_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderDeepSeek, cfg.Provider)
	assert.Equal(t, "deepseek-reasoner", cfg.Model)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.False(t, cfg.HistoryEnabled())
}

func TestGenericKeyWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("MODEL_API_KEY", " generic ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "generic", cfg.APIKey)
}

func TestProviderKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.APIKey)
}

func TestMaxRetriesClamped(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_RETRIES", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MODEL_PROVIDER", "watson")
	_, err := Load("")
	assert.Error(t, err)

	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestMalformedEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("PROMPT_TIMESTAMP", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.PromptTimestamp)
}
