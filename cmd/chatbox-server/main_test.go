package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"chatbox/pkg/ai"
	"chatbox/pkg/config"
)

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY": " sk-test ",
		"GOOGLE_API_KEY": "",
	}
	cfg := config.Default()
	cfg.Providers.Google.APIKey = "from-config"

	applyEnv(&cfg, ai.ListProviders(), func(k string) string { return env[k] })

	if cfg.Providers.OpenAI.APIKey != "sk-test" {
		t.Errorf("Expected trimmed OpenAI key from env, got %q", cfg.Providers.OpenAI.APIKey)
	}
	if cfg.Providers.Google.APIKey != "from-config" {
		t.Errorf("Expected empty env to keep config key, got %q", cfg.Providers.Google.APIKey)
	}
}

func TestApplyFlags(t *testing.T) {
	defer func() { flagAddr, flagDB, flagProvider = "", "", "" }()

	cfg := config.Default()
	applyFlags(&cfg)
	if cfg.Server.ListenAddr != config.DefaultListenAddr || cfg.LLMProvider != "openai" {
		t.Errorf("Expected defaults without flags, got %+v", cfg.Server)
	}

	flagAddr, flagDB, flagProvider = "127.0.0.1:9000", "/tmp/chat.db", "google"
	applyFlags(&cfg)
	if cfg.Server.ListenAddr != "127.0.0.1:9000" || cfg.Server.DatabasePath != "/tmp/chat.db" {
		t.Errorf("Expected flag overrides, got %+v", cfg.Server)
	}
	if cfg.LLMProvider != "google" {
		t.Errorf("Expected provider override, got %q", cfg.LLMProvider)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("Expected overridden config to validate, got %v", err)
	}
}

func TestApplyEnv_SkipsKeylessProviders(t *testing.T) {
	cfg := config.Default()
	providers := []ai.ProviderInfo{{Type: "local", Name: "Local"}}

	applyEnv(&cfg, providers, func(string) string { return "should-not-be-used" })

	if cfg.Providers.OpenAI.APIKey != "" || cfg.Providers.Google.APIKey != "" {
		t.Errorf("Expected no keys set for a keyless provider, got %+v", cfg.Providers)
	}
}

func TestProvidersCommand(t *testing.T) {
	defer func() { flagConfig, flagEnvFile = config.GetConfigPath(), ".env" }()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_API_KEY", "")

	dir := t.TempDir()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"providers",
		"--config", filepath.Join(dir, "config.json"),
		"--env-file", filepath.Join(dir, "missing.env"),
	})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("providers command error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected one line per provider, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[0], "  google") || !strings.Contains(lines[0], "GOOGLE_API_KEY missing") {
		t.Errorf("Unexpected google line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "* openai") || !strings.Contains(lines[1], "key set") {
		t.Errorf("Unexpected openai line %q", lines[1])
	}
}
