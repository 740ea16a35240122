package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("HRIDAYA_LLM_MODEL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model)
	assert.Equal(t, 1024, cfg.MaxTokens)
	assert.False(t, cfg.Enabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("HRIDAYA_LLM_ENDPOINT", "http://localhost:9000/")
	t.Setenv("HRIDAYA_LLM_MODEL", "local-model")
	t.Setenv("HRIDAYA_LLM_MAX_TOKENS", "256")
	t.Setenv("HRIDAYA_LLM_TIMEOUT_MS", "500")
	t.Setenv("HRIDAYA_LLM_LOG_CALLS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Enabled())
	assert.Equal(t, "http://localhost:9000", cfg.Endpoint)
	assert.Equal(t, "local-model", cfg.Model)
	assert.Equal(t, 256, cfg.MaxTokens)
	assert.Equal(t, 500, cfg.TimeoutMs)
	assert.False(t, cfg.LogCalls)
}

func TestLoadConfig_RejectsMalformedValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "HRIDAYA_LLM_MAX_TOKENS", value: "-3"},
		{name: "HRIDAYA_LLM_MAX_TOKENS", value: "many"},
		{name: "HRIDAYA_LLM_TIMEOUT_MS", value: "soon"},
		{name: "HRIDAYA_LLM_TIMEOUT_MS", value: "0"},
		{name: "HRIDAYA_LLM_LOG_CALLS", value: "sometimes"},
	}

	for _, tc := range tests {
		t.Run(tc.name+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.name, tc.value)

			_, err := LoadConfig()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.name)
		})
	}
}
