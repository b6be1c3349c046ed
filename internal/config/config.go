package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when no chat API key is configured.
var ErrMissingAPIKey = errors.New("missing OpenAI API key")

// Config holds the application configuration. It is built once at startup and
// passed by reference into constructors; nothing reads the environment after Load.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Prompts    PromptsConfig    `mapstructure:"prompts"`
	Server     ServerConfig     `mapstructure:"server"`
	LogLevel   string           `mapstructure:"log_level"`
}

// LLMConfig holds the chat-completion API configuration.
type LLMConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EmbeddingsConfig holds the vector-store configuration. When Enabled is false
// the rest of the struct is ignored and no retrieval happens.
type EmbeddingsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	DBPath   string `mapstructure:"db_path"`
	SeedPath string `mapstructure:"seed_path"`
}

// MemoryConfig holds conversation-history configuration.
type MemoryConfig struct {
	// DBPath is the SQLite file for turn persistence; empty keeps history
	// in process memory only.
	DBPath string `mapstructure:"db_path"`
	// MaxContextMessages bounds how many non-system turns are kept per session.
	MaxContextMessages int `mapstructure:"max_context_messages"`
}

// PromptsConfig locates the prompt template files.
type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	AllowAnyOrigin bool   `mapstructure:"allow_any_origin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.model", "gpt-4-turbo-preview")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("embeddings.enabled", false)
	v.SetDefault("embeddings.model", "text-embedding-3-small")
	v.SetDefault("embeddings.db_path", "vectors.db")
	v.SetDefault("memory.max_context_messages", 10)
	v.SetDefault("prompts.dir", "prompts")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("log_level", "info")
}

// bindEnv maps the environment variable names the original deployment used
// onto config keys. Environment values override the YAML file.
func bindEnv(v *viper.Viper) {
	envKeys := map[string]string{
		"llm.api_key":                 "OPENAI_API_KEY",
		"llm.base_url":                "OPENAI_BASE_URL",
		"llm.model":                   "OPENAI_MODEL",
		"llm.temperature":             "OPENAI_TEMPERATURE",
		"llm.max_tokens":              "OPENAI_MAX_TOKENS",
		"embeddings.enabled":          "USE_VECTOR_DB",
		"embeddings.api_key":          "OPENAI_EMBEDDING_API_KEY",
		"embeddings.base_url":         "OPENAI_EMBEDDING_BASE_URL",
		"embeddings.db_path":          "VECTOR_DB_PATH",
		"memory.db_path":              "HISTORY_DB_PATH",
		"memory.max_context_messages": "MAX_CONTEXT_MESSAGES",
		"prompts.dir":                 "PROMPTS_DIR",
		"log_level":                   "LOG_LEVEL",
	}
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}
}

// Load reads config.yaml (or the file named by CONFIG_PATH) and applies
// environment overrides. A missing config file is not an error; everything
// can come from the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the invariants the rest of the application relies on.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm: %w (set OPENAI_API_KEY)", ErrMissingAPIKey)
	}
	return nil
}

// EmbeddingsAPIKey returns the embedding key, falling back to the chat key the
// way the original deployment did.
func (c *Config) EmbeddingsAPIKey() string {
	if c.Embeddings.APIKey != "" {
		return c.Embeddings.APIKey
	}
	return c.LLM.APIKey
}
