package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// HowToCookTool explains how to prepare a named dish.
type HowToCookTool struct {
	client llm.Client
	model  string
}

func NewHowToCookTool(client llm.Client, model string) *HowToCookTool {
	return &HowToCookTool{client: client, model: model}
}

func (t *HowToCookTool) Name() string { return "how_to_cook_food" }

func (t *HowToCookTool) Description() string {
	return "Explain step by step how to cook a named dish."
}

func (t *HowToCookTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"dish": {"type": "string"}
				},
				"required": ["dish"]
			}`),
		},
	}
}

func (t *HowToCookTool) Run(ctx context.Context, args string) (string, error) {
	var params struct {
		Dish string `json:"dish"`
	}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}
	prompt := fmt.Sprintf("Hướng dẫn từng bước cách nấu món %s (Vietnamese).", params.Dish)
	return askLLM(ctx, t.client, t.model, prompt)
}
