package tools

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Tool is the interface for all tools the model can call.
type Tool interface {
	Name() string
	Description() string
	// Definition returns the OpenAI tool declaration advertised to the model.
	Definition() openai.Tool
	// Run executes the tool with the raw JSON arguments from the model.
	Run(ctx context.Context, args string) (string, error)
}
