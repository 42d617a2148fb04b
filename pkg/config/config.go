package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultHost         = "localhost"
	DefaultPort         = 8000
	DefaultListenAddr   = ":8000"
	DefaultHistoryLimit = 5
)

// Config represents the application configuration shared by client and server.
type Config struct {
	Client      ClientConfig    `json:"client"`
	Server      ServerConfig    `json:"server"`
	LLMProvider string          `json:"llm_provider"`
	Providers   ProvidersConfig `json:"providers"`
	LogLevel    string          `json:"log_level"`
	LogFormat   string          `json:"log_format"`
	LogFile     string          `json:"log_file"`
}

// ClientConfig holds the chat client settings.
type ClientConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	StateFile string `json:"state_file"`
}

// ServerConfig holds the chat server settings.
type ServerConfig struct {
	ListenAddr   string `json:"listen_addr"`
	DatabasePath string `json:"database_path"`
	HistoryLimit int    `json:"history_limit"`
}

// ProvidersConfig groups per-provider LLM settings.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `json:"openai"`
	Google GoogleConfig `json:"google"`
}

// OpenAIConfig holds the OpenAI API configuration
type OpenAIConfig struct {
	APIKey            string  `json:"api_key"`
	APIURL            string  `json:"api_url"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	APITimeoutSeconds int     `json:"api_timeout_seconds"`
}

// GoogleConfig holds the Google AI (Gemini) configuration
type GoogleConfig struct {
	APIKey            string  `json:"api_key"`
	Model             string  `json:"model"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	APITimeoutSeconds int     `json:"api_timeout_seconds"`
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		Client: ClientConfig{
			Host:      DefaultHost,
			Port:      DefaultPort,
			StateFile: "",
		},
		Server: ServerConfig{
			ListenAddr:   DefaultListenAddr,
			DatabasePath: "chat_history.db",
			HistoryLimit: DefaultHistoryLimit,
		},
		LLMProvider: "openai",
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIURL:            "https://api.openai.com/v1",
				Model:             "gpt-4o-mini",
				Temperature:       0.7,
				MaxTokens:         1000,
				APITimeoutSeconds: 30,
			},
			Google: GoogleConfig{
				Model:             "gemini-2.5-flash",
				Temperature:       0.7,
				MaxTokens:         1000,
				APITimeoutSeconds: 60,
			},
		},
		LogLevel:  "info",
		LogFormat: "json",
		LogFile:   "",
	}
}

// Load loads configuration from the specified path
// If the file doesn't exist, creates one with default values
func Load(configPath string) (Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return Config{}, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(configPath, cfg); err != nil {
				return Config{}, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	// Unmarshal over defaults so sections missing from older files keep sane values.
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified path
func Save(configPath string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// APIKey returns the key configured for provider, or "" for an unknown provider.
func (c Config) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.Providers.OpenAI.APIKey
	case "google":
		return c.Providers.Google.APIKey
	}
	return ""
}

// SetAPIKey stores key for provider and reports whether the provider has a key setting.
func (c *Config) SetAPIKey(provider, key string) bool {
	switch provider {
	case "openai":
		c.Providers.OpenAI.APIKey = key
	case "google":
		c.Providers.Google.APIKey = key
	default:
		return false
	}
	return true
}

// Validate checks the settings every binary depends on.
func (c Config) Validate() error {
	if err := c.ValidateClient(); err != nil {
		return err
	}
	return c.ValidateServer()
}

// ValidateClient checks the settings the chat client needs.
func (c Config) ValidateClient() error {
	if strings.TrimSpace(c.Client.Host) == "" {
		return fmt.Errorf("client host is required")
	}
	if c.Client.Port <= 0 || c.Client.Port > 65535 {
		return fmt.Errorf("client port must be between 1 and 65535, got: %d", c.Client.Port)
	}
	return validateLogLevel(c.LogLevel)
}

// ValidateServer checks the settings the chat server needs.
func (c Config) ValidateServer() error {
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		return fmt.Errorf("server listen_addr is required")
	}
	if strings.TrimSpace(c.Server.DatabasePath) == "" {
		return fmt.Errorf("server database_path is required")
	}
	if c.Server.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got: %d", c.Server.HistoryLimit)
	}

	switch c.LLMProvider {
	case "openai":
		if err := validateProvider("openai", c.Providers.OpenAI.Temperature, c.Providers.OpenAI.MaxTokens, c.Providers.OpenAI.APITimeoutSeconds); err != nil {
			return err
		}
	case "google":
		if err := validateProvider("google", c.Providers.Google.Temperature, c.Providers.Google.MaxTokens, c.Providers.Google.APITimeoutSeconds); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLMProvider)
	}

	return validateLogLevel(c.LogLevel)
}

func validateProvider(name string, temperature float64, maxTokens, timeout int) error {
	if temperature < 0 || temperature > 2 {
		return fmt.Errorf("%s temperature must be between 0 and 2, got: %f", name, temperature)
	}
	if maxTokens <= 0 {
		return fmt.Errorf("%s max_tokens must be positive, got: %d", name, maxTokens)
	}
	if timeout <= 0 {
		return fmt.Errorf("%s api_timeout_seconds must be positive, got: %d", name, timeout)
	}
	return nil
}

func validateLogLevel(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("invalid log_level: %s", level)
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(baseDir(), "config.json")
}

// GetStatePath returns the default location of the persisted client state.
func GetStatePath() string {
	return filepath.Join(baseDir(), "state.json")
}

// ResolveStatePath returns the configured state file or the default one.
func (c Config) ResolveStatePath() string {
	if p := strings.TrimSpace(c.Client.StateFile); p != "" {
		return p
	}
	return GetStatePath()
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(homeDir) == "" {
		return ".chatbox"
	}
	return filepath.Join(homeDir, ".chatbox")
}
