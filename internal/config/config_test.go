package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/kin-agent/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KIN_PORT", "PORT", "KIN_VERSION", "KIN_LOG_LEVEL",
		"KIN_LLM_PROVIDER", "KIN_USE_MOCK_LLM", "KIN_MODEL_NAME",
		"GROQ_API_KEY", "KIN_GROQ_BASE_URL", "ANTHROPIC_API_KEY",
		"KIN_GCP_PROJECT", "KIN_GCP_LOCATION", "KIN_STORAGE_BACKEND",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, config.ProviderGroq, cfg.Provider)
	assert.Equal(t, "llama3-70b-8192", cfg.ModelName)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, "us-central1", cfg.GCPLocation)
	assert.Equal(t, config.StorageMemory, cfg.StorageBackend)
}

func TestLoad_MissingKeyIsOnlyAWarning(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"GROQ_API_KEY environment variable not set"}, cfg.Warnings())

	t.Setenv("GROQ_API_KEY", "gsk_test")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_ProviderSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("KIN_LLM_PROVIDER", "Anthropic")
	t.Setenv("PORT", "9000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-3-7-sonnet-latest", cfg.ModelName)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"ANTHROPIC_API_KEY environment variable not set"}, cfg.Warnings())

	t.Setenv("KIN_USE_MOCK_LLM", "1")
	t.Setenv("KIN_MODEL_NAME", "custom")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderMock, cfg.Provider)
	assert.Equal(t, "custom", cfg.ModelName)
	assert.Empty(t, cfg.Warnings())
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("KIN_LLM_PROVIDER", "openai")
	_, err := config.Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("KIN_STORAGE_BACKEND", "firestore")
	_, err = config.Load()
	assert.ErrorContains(t, err, "KIN_GCP_PROJECT")

	t.Setenv("KIN_GCP_PROJECT", "proj")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorageFirestore, cfg.StorageBackend)

	clearEnv(t)
	t.Setenv("KIN_STORAGE_BACKEND", "redis")
	_, err = config.Load()
	assert.Error(t, err)
}
