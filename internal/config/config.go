package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/terraincognita07/hridaya/internal/i18n"
	"github.com/terraincognita07/hridaya/internal/llm"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
	"secret":                                     {},
}

type Config struct {
	Port            string
	DBPath          string
	SecretKey       string
	Location        *time.Location
	CookieSecure    bool
	DefaultLanguage string
	LLM             llm.LLMConfig
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// LoadCommandConfig is Load for offline commands. Only the storage and
// language settings are read, so no SECRET_KEY is needed.
func LoadCommandConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Config{
		DBPath:          getEnv("DB_PATH", filepath.Join("data", "hridaya.db")),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", i18n.LangEN),
	}, nil
}

func FromEnv() (Config, error) {
	port, err := resolvePort()
	if err != nil {
		return Config{}, err
	}
	secretKey, err := resolveSecretKey()
	if err != nil {
		return Config{}, err
	}
	location, err := resolveLocation()
	if err != nil {
		return Config{}, err
	}
	cookieSecure, err := resolveBool("COOKIE_SECURE", false)
	if err != nil {
		return Config{}, err
	}
	llmConfig, err := llm.LoadConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Port:            port,
		DBPath:          getEnv("DB_PATH", filepath.Join("data", "hridaya.db")),
		SecretKey:       secretKey,
		Location:        location,
		CookieSecure:    cookieSecure,
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", i18n.LangEN),
		LLM:             llmConfig,
	}, nil
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses an insecure placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := strings.TrimSpace(os.Getenv("PORT"))
	if raw == "" {
		return "8080", nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT must be a number between 1 and 65535, got %q", raw)
	}
	return strconv.Itoa(port), nil
}

func resolveLocation() (*time.Location, error) {
	name := getEnv("TZ", "UTC")
	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("TZ %q is not a valid time zone: %w", name, err)
	}
	return location, nil
}

func resolveBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}
	return value, nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
