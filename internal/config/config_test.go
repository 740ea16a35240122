package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestResolveSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY is empty")
	}

	t.Setenv("SECRET_KEY", "change_me_in_production")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY uses insecure placeholder")
	}

	t.Setenv("SECRET_KEY", "replace_with_at_least_32_random_characters")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY uses example placeholder")
	}

	t.Setenv("SECRET_KEY", "too-short-secret")
	if _, err := resolveSecretKey(); err == nil {
		t.Fatal("expected error when SECRET_KEY is too short")
	}

	t.Setenv("SECRET_KEY", validSecret)
	secret, err := resolveSecretKey()
	if err != nil {
		t.Fatalf("expected valid secret, got error: %v", err)
	}
	if secret != validSecret {
		t.Fatalf("expected %q, got %q", validSecret, secret)
	}
}

func TestResolvePort(t *testing.T) {
	t.Setenv("PORT", "")
	port, err := resolvePort()
	if err != nil {
		t.Fatalf("expected default port, got error: %v", err)
	}
	if port != "8080" {
		t.Fatalf("expected default port 8080, got %q", port)
	}

	t.Setenv("PORT", "9090")
	port, err = resolvePort()
	if err != nil {
		t.Fatalf("expected valid port, got error: %v", err)
	}
	if port != "9090" {
		t.Fatalf("expected port 9090, got %q", port)
	}

	for _, invalid := range []string{"0", "70000", "not-a-number"} {
		t.Setenv("PORT", invalid)
		if _, err := resolvePort(); err == nil {
			t.Fatalf("expected invalid port %q to fail", invalid)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SECRET_KEY", validSecret)
	t.Setenv("TZ", "Europe/Berlin")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("DB_PATH", "")
	t.Setenv("DEFAULT_LANGUAGE", "ru")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Location.String() != "Europe/Berlin" {
		t.Fatalf("unexpected location %q", cfg.Location)
	}
	if !cfg.CookieSecure {
		t.Fatal("expected secure cookies")
	}
	if cfg.DBPath != filepath.Join("data", "hridaya.db") {
		t.Fatalf("unexpected default db path %q", cfg.DBPath)
	}
	if cfg.DefaultLanguage != "ru" {
		t.Fatalf("unexpected default language %q", cfg.DefaultLanguage)
	}
	if cfg.LLM.Enabled() {
		t.Fatal("expected llm disabled without api key")
	}
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SECRET_KEY", validSecret)
	t.Setenv("COOKIE_SECURE", "")

	t.Setenv("TZ", "Mars/Olympus")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected invalid TZ to fail")
	}

	t.Setenv("TZ", "UTC")
	t.Setenv("COOKIE_SECURE", "sometimes")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected invalid COOKIE_SECURE to fail")
	}

	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("HRIDAYA_LLM_TIMEOUT_MS", "soon")
	_, err := FromEnv()
	if err == nil || !strings.Contains(err.Error(), "HRIDAYA_LLM_TIMEOUT_MS") {
		t.Fatalf("expected invalid HRIDAYA_LLM_TIMEOUT_MS to fail naming the variable, got %v", err)
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	content := "SECRET_KEY=" + validSecret + "\nPORT=9191\nDB_PATH=from-dotenv.db\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)

	t.Setenv("SECRET_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("TZ", "UTC")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("DB_PATH", "explicit.db")
	os.Unsetenv("SECRET_KEY")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9191" {
		t.Fatalf("expected port from .env, got %q", cfg.Port)
	}
	if cfg.DBPath != "explicit.db" {
		t.Fatalf("expected environment to win over .env, got %q", cfg.DBPath)
	}
}

func TestLoadCommandConfigNeedsNoSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECRET_KEY", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("DEFAULT_LANGUAGE", "ru")

	cfg, err := LoadCommandConfig()
	if err != nil {
		t.Fatalf("LoadCommandConfig: %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "hridaya.db") {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.DefaultLanguage != "ru" {
		t.Fatalf("expected language from environment, got %q", cfg.DefaultLanguage)
	}
}
