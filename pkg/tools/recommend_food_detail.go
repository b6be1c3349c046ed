package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// RecommendFoodDetailTool refines a recommendation by cooking style and taste
// once the user has narrowed down what they are in the mood for.
type RecommendFoodDetailTool struct {
	client llm.Client
	model  string
}

func NewRecommendFoodDetailTool(client llm.Client, model string) *RecommendFoodDetailTool {
	return &RecommendFoodDetailTool{client: client, model: model}
}

func (t *RecommendFoodDetailTool) Name() string { return "recommend_food_detail" }

func (t *RecommendFoodDetailTool) Description() string {
	return "Recommend detailed food style and taste."
}

func (t *RecommendFoodDetailTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"style": {"type": "string"},
					"taste": {"type": "string"}
				}
			}`),
		},
	}
}

func (t *RecommendFoodDetailTool) Run(ctx context.Context, args string) (string, error) {
	var params struct {
		Style string `json:"style"`
		Taste string `json:"taste"`
	}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}
	prompt := fmt.Sprintf("Gợi ý món ăn %s với hương vị %s (Vietnamese).", params.Style, params.Taste)
	return askLLM(ctx, t.client, t.model, prompt)
}
