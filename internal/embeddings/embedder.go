package embeddings

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// Embedder computes a dense vector for a piece of text. Mocked in tests.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder embeds text through the OpenAI embeddings endpoint.
type OpenAIEmbedder struct {
	client llm.Embedder
	model  openai.EmbeddingModel
}

// NewOpenAIEmbedder wraps client with the configured embedding model
// (text-embedding-3-small by default).
func NewOpenAIEmbedder(client llm.Embedder, model string) *OpenAIEmbedder {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{client: client, model: openai.EmbeddingModel(model)}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, llm.WrapUpstream(err)
	}
	if len(resp.Data) == 0 {
		return nil, llm.WrapUpstream(errEmptyEmbedding)
	}
	return resp.Data[0].Embedding, nil
}
