package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LLMConfig holds the chat-completion client settings.
type LLMConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Model      string
	MaxTokens  int
	TimeoutMs  int
	LogCalls   bool
}

// DefaultConfig targets the hosted messages API. The client stays disabled
// until an API key is set.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Endpoint:   "https://api.anthropic.com",
		APIVersion: "2023-06-01",
		Model:      "claude-sonnet-4-20250514",
		MaxTokens:  1024,
		TimeoutMs:  120000,
		LogCalls:   true,
	}
}

// LoadConfig reads HRIDAYA_LLM_* variables and ANTHROPIC_API_KEY over the
// defaults. A set but malformed value is an error naming the variable.
func LoadConfig() (LLMConfig, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("HRIDAYA_LLM_ENDPOINT")); v != "" {
		cfg.Endpoint = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("HRIDAYA_LLM_MODEL")); v != "" {
		cfg.Model = v
	}

	var err error
	if cfg.MaxTokens, err = positiveIntEnv("HRIDAYA_LLM_MAX_TOKENS", cfg.MaxTokens); err != nil {
		return LLMConfig{}, err
	}
	if cfg.TimeoutMs, err = positiveIntEnv("HRIDAYA_LLM_TIMEOUT_MS", cfg.TimeoutMs); err != nil {
		return LLMConfig{}, err
	}
	if v := strings.TrimSpace(os.Getenv("HRIDAYA_LLM_LOG_CALLS")); v != "" {
		enabled, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			return LLMConfig{}, fmt.Errorf("HRIDAYA_LLM_LOG_CALLS must be a boolean, got %q", v)
		}
		cfg.LogCalls = enabled
	}

	return cfg, nil
}

func positiveIntEnv(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return value, nil
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Endpoint != ""
}
