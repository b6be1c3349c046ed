package llm

import (
	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/config"
)

// NewClient creates a new OpenAI client for chat completions.
func NewClient(cfg config.LLMConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewEmbeddingClient creates the OpenAI client used for embeddings, which may
// point at a different endpoint than the chat client.
func NewEmbeddingClient(apiKey, baseURL string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
