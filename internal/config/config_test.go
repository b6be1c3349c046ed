package config

import (
	"errors"
	"os"
	"testing"
)

const sampleConfig = `
llm:
  base_url: https://api.example.com/v1
  api_key: dummy
  model: gpt-4o
  temperature: 0.2
  max_tokens: 512
embeddings:
  enabled: true
  db_path: /tmp/vectors.db
memory:
  max_context_messages: 6
server:
  host: 0.0.0.0
  port: "9090"
`

// TestLoad_File verifies that Load unmarshals a YAML config file.
func TestLoad_File(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", cfg.LLM.Temperature)
	}
	if !cfg.Embeddings.Enabled {
		t.Fatal("expected embeddings enabled")
	}
	if cfg.Memory.MaxContextMessages != 6 {
		t.Fatalf("unexpected max context messages: %d", cfg.Memory.MaxContextMessages)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
}

// TestLoad_EnvOverrides verifies the original deployment's environment
// variables override file values.
func TestLoad_EnvOverrides(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("USE_VECTOR_DB", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("env override ignored: %s", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gpt-4.1-mini" {
		t.Fatalf("env override ignored: %s", cfg.LLM.Model)
	}
	if cfg.Embeddings.Enabled {
		t.Fatal("USE_VECTOR_DB=false should disable embeddings")
	}
}

// TestLoad_MissingFile verifies a missing config file is tolerated when the
// environment supplies everything.
func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(cwd)

	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("unexpected key: %s", cfg.LLM.APIKey)
	}
	if cfg.Memory.MaxContextMessages != 10 {
		t.Fatalf("default not applied: %d", cfg.Memory.MaxContextMessages)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestEmbeddingsAPIKeyFallback(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{APIKey: "chat-key"}}
	if got := cfg.EmbeddingsAPIKey(); got != "chat-key" {
		t.Fatalf("expected fallback to chat key, got %s", got)
	}
	cfg.Embeddings.APIKey = "embed-key"
	if got := cfg.EmbeddingsAPIKey(); got != "embed-key" {
		t.Fatalf("expected embed key, got %s", got)
	}
}
