package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ErrUpstream marks failures of the external completion/embedding API.
// Callers wrap provider errors with it so the HTTP layer can classify them.
var ErrUpstream = errors.New("upstream LLM error")

// WrapUpstream tags err as an upstream failure.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// Client is the minimal subset of openai.Client the application uses; it is
// easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// Embedder is the subset of openai.Client used for vector embeddings.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}
