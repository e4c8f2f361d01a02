package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenEnvUnset(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.VectorStore.Backend)
	assert.Equal(t, 50, cfg.Memory.Working.MaxMessages)
	assert.Equal(t, 3, cfg.RAG.Reflector.MaxIterations)
	assert.False(t, cfg.RAG.Reflector.EnableLLMVerify)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("OPENCLAW_PORT", "9999")
	t.Setenv("OPENCLAW_OPENAI_ENABLED", "true")
	t.Setenv("OPENCLAW_OPENAI_API_KEY", "sk-test")
	t.Setenv("MEMORY_WORKING_MAX_TOKENS", "4000")
	t.Setenv("ORCHESTRATOR_DEFAULT_TIMEOUT", "45s")

	cfg := Load()
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.True(t, cfg.Providers["openai"].Enabled)
	assert.Equal(t, "sk-test", cfg.Providers["openai"].APIKey)
	assert.Equal(t, 4000, cfg.Memory.Working.MaxTokens)
	assert.Equal(t, 45*time.Second, cfg.Orchestrator.DefaultTimeout)
}

func TestConfig_Validate_RejectsUnknownBackend(t *testing.T) {
	cfg := Load()
	cfg.VectorStore.Backend = "bogus"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_RejectsPgvectorWithoutDSN(t *testing.T) {
	cfg := Load()
	cfg.Providers["openai"] = ProviderConfig{Enabled: true}
	cfg.VectorStore.Backend = "pgvector"
	cfg.VectorStore.PostgresDSN = ""
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_RequiresAtLeastOneProvider(t *testing.T) {
	cfg := Load()
	for name := range cfg.Providers {
		cfg.Providers[name] = ProviderConfig{Enabled: false}
	}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_PassesWithEnabledProviderAndMemoryBackend(t *testing.T) {
	cfg := Load()
	cfg.Providers["openai"] = ProviderConfig{Enabled: true}
	cfg.VectorStore.Backend = "memory"
	require.NoError(t, cfg.Validate())
}

func TestMain_NoPanicOnMissingEnvFile(t *testing.T) {
	wd, _ := os.Getwd()
	_ = wd // .env absence in test dir must not be treated as fatal
	_ = Load()
}
