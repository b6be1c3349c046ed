package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/chat"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/config"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/embeddings"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/httpapi"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/prompt"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/session"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/pkg/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.L.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewClient(cfg.LLM)

	builder, err := prompt.NewBuilder(cfg.Prompts.Dir)
	if err != nil {
		logger.L.Error("failed to load prompt templates", "dir", cfg.Prompts.Dir, "error", err)
		os.Exit(1)
	}

	retriever := buildRetriever(cfg)

	historyStore, err := memory.NewStore(cfg.Memory.DBPath)
	if err != nil {
		logger.L.Error("failed to open history store", "path", cfg.Memory.DBPath, "error", err)
		os.Exit(1)
	}
	defer historyStore.Close()

	toolManager := tools.NewManager()
	geo := tools.NewGeoWeatherClient()
	toolManager.Register(tools.NewWeatherTool(geo))
	toolManager.Register(tools.NewRecommendFoodTool(llmClient, cfg.LLM.Model))
	toolManager.Register(tools.NewRecommendFoodDetailTool(llmClient, cfg.LLM.Model))
	toolManager.Register(tools.NewFindRestaurantsTool(llmClient, cfg.LLM.Model, geo))
	toolManager.Register(tools.NewHowToCookTool(llmClient, cfg.LLM.Model))
	toolManager.Register(tools.NewExtractIngredientsTool(llmClient, cfg.LLM.Model, retriever))

	chatManager := chat.New(llmClient, cfg.LLM, builder, retriever, toolManager)
	sessions := session.NewManager(cfg.Memory.MaxContextMessages, historyStore)
	server := httpapi.New(cfg.Server, sessions, chatManager)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.L.Info("starting server", "address", addr, "vector_db", cfg.Embeddings.Enabled)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		logger.L.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

// buildRetriever selects the retrieval capability once at startup: the
// SQLite-backed vector store when enabled, the no-op variant otherwise.
func buildRetriever(cfg *config.Config) embeddings.Retriever {
	if !cfg.Embeddings.Enabled {
		return embeddings.Disabled{}
	}

	embedClient := llm.NewEmbeddingClient(cfg.EmbeddingsAPIKey(), cfg.Embeddings.BaseURL)
	embedder := embeddings.NewOpenAIEmbedder(embedClient, cfg.Embeddings.Model)
	store, err := embeddings.NewStore(cfg.Embeddings.DBPath, embedder)
	if err != nil {
		logger.L.Error("failed to open vector store; retrieval disabled", "error", err)
		return embeddings.Disabled{}
	}
	if err := store.Seed(context.Background(), cfg.Embeddings.SeedPath); err != nil {
		logger.L.Warn("failed to seed vector store", "error", err)
	}
	return store
}
