// Package config loads runtime configuration from an optional YAML file and
// the environment. Precedence is defaults, then file, then environment. The
// resulting struct is passed down explicitly; nothing in this package is
// consulted after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/swarmforge/swarmforge/core"
)

// Provider names accepted by Config.Provider.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the full runtime configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Tools   ToolsConfig   `yaml:"tools"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// ModelConfig selects and configures the text generation backend.
type ModelConfig struct {
	// Provider is one of none, openai or anthropic. With "none" agents fall
	// back to their deterministic placeholder output.
	Provider        string `yaml:"provider"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
}

// ToolsConfig configures the builtin tools.
type ToolsConfig struct {
	TavilyAPIKey       string        `yaml:"tavily_api_key"`
	FileRoot           string        `yaml:"file_root"`
	CodeTimeout        time.Duration `yaml:"code_timeout"`
	SearchMaxResults   int           `yaml:"search_max_results"`
	CodeExecutionAllow bool          `yaml:"code_execution_allow"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Model: ModelConfig{
			Provider:       ProviderNone,
			OpenAIModel:    "gpt-4o-mini",
			AnthropicModel: "claude-3-5-haiku-latest",
		},
		Tools: ToolsConfig{
			FileRoot:           ".",
			CodeTimeout:        10 * time.Second,
			SearchMaxResults:   5,
			CodeExecutionAllow: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded first (missing is fine), then the YAML file named by
// SWARMFORGE_CONFIG (or config.yaml if present), then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("SWARMFORGE_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field constraints.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderNone, ProviderOpenAI, ProviderAnthropic:
	default:
		return core.NewConfigError("unknown model provider: %s", c.Model.Provider)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return core.NewConfigError("invalid server port: %d", c.Server.Port)
	}
	if c.Tools.CodeTimeout <= 0 {
		return core.NewConfigError("code timeout must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SWARMFORGE_HOST", cfg.Server.Host)
	cfg.Server.Port = getIntEnv("SWARMFORGE_PORT", cfg.Server.Port)

	cfg.Model.Provider = getEnv("SWARMFORGE_PROVIDER", cfg.Model.Provider)
	cfg.Model.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.Model.OpenAIAPIKey)
	cfg.Model.OpenAIModel = getEnv("OPENAI_MODEL", cfg.Model.OpenAIModel)
	cfg.Model.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.Model.AnthropicAPIKey)
	cfg.Model.AnthropicModel = getEnv("ANTHROPIC_MODEL", cfg.Model.AnthropicModel)

	cfg.Tools.TavilyAPIKey = getEnv("TAVILY_API_KEY", cfg.Tools.TavilyAPIKey)
	cfg.Tools.FileRoot = getEnv("SWARMFORGE_FILE_ROOT", cfg.Tools.FileRoot)
	cfg.Tools.CodeTimeout = getDurationEnv("SWARMFORGE_CODE_TIMEOUT", cfg.Tools.CodeTimeout)

	cfg.Logging.Level = getEnv("SWARMFORGE_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("SWARMFORGE_LOG_FORMAT", cfg.Logging.Format)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
