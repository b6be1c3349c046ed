// Package embeddings provides semantic recall for the chat flow: text
// fragments are embedded via the OpenAI embeddings API and stored in a local
// SQLite database, and the nearest fragments by cosine similarity are pulled
// back in as retrieval context.
package embeddings

import "context"

// Retriever is the capability the chat manager depends on. It has two
// variants selected once at startup: the SQLite-backed Store when the vector
// DB is enabled, and Disabled otherwise.
type Retriever interface {
	// Index stores a text fragment with optional metadata.
	Index(ctx context.Context, text string, metadata map[string]string) error
	// Query returns up to k stored fragments nearest to text.
	Query(ctx context.Context, text string, k int) ([]string, error)
}

// Disabled is the no-op variant used when the vector store is turned off.
// It never errors, so a disabled store can never fail a chat request.
type Disabled struct{}

func (Disabled) Index(context.Context, string, map[string]string) error { return nil }

func (Disabled) Query(context.Context, string, int) ([]string, error) { return nil, nil }
