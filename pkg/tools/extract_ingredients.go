package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/embeddings"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// ExtractIngredientsTool pulls food ingredients out of free-form user text.
// It retrieves the nearest catalogue fragments from the vector store as hints
// and has the model do the actual extraction and normalization. When the
// vector store is disabled the model works from the text alone.
type ExtractIngredientsTool struct {
	client    llm.Client
	model     string
	retriever embeddings.Retriever
}

func NewExtractIngredientsTool(client llm.Client, model string, retriever embeddings.Retriever) *ExtractIngredientsTool {
	if retriever == nil {
		retriever = embeddings.Disabled{}
	}
	return &ExtractIngredientsTool{client: client, model: model, retriever: retriever}
}

func (t *ExtractIngredientsTool) Name() string { return "extract_ingredients" }

func (t *ExtractIngredientsTool) Description() string {
	return "Extracts and validates food ingredients from user text using vector retrieval and LLM refinement."
}

func (t *ExtractIngredientsTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "User text potentially containing food ingredients"}
				},
				"required": ["query"]
			}`),
		},
	}
}

func (t *ExtractIngredientsTool) Run(ctx context.Context, args string) (string, error) {
	var params struct {
		Query string `json:"query"`
	}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}
	if params.Query == "" {
		return "Không tìm thấy nguyên liệu nào trong câu của bạn.", nil
	}

	hints, err := t.retriever.Query(ctx, params.Query, 3)
	if err != nil {
		// Retrieval is an enrichment step; extraction still works without it.
		hints = nil
	}

	var sb strings.Builder
	sb.WriteString("Liệt kê các nguyên liệu món ăn xuất hiện trong câu sau, mỗi nguyên liệu một dòng, không giải thích:\n\n")
	sb.WriteString(params.Query)
	if len(hints) > 0 {
		sb.WriteString("\n\nGợi ý từ cơ sở dữ liệu món ăn:\n")
		for _, h := range hints {
			sb.WriteString("- ")
			sb.WriteString(h)
			sb.WriteString("\n")
		}
	}
	return askLLM(ctx, t.client, t.model, sb.String())
}
