package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// RecommendFoodTool suggests dishes for the user's situation by delegating to
// the model with a focused sub-prompt.
type RecommendFoodTool struct {
	client llm.Client
	model  string
}

func NewRecommendFoodTool(client llm.Client, model string) *RecommendFoodTool {
	return &RecommendFoodTool{client: client, model: model}
}

func (t *RecommendFoodTool) Name() string { return "recommend_food" }

func (t *RecommendFoodTool) Description() string {
	return "Recommend food based on gender, location, disease, or time"
}

func (t *RecommendFoodTool) Definition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"gender": {"type": "string"},
					"location": {"type": "string"},
					"disease": {"type": "string"},
					"time": {"type": "string"},
					"user_type": {"type": "string", "enum": ["personal", "family"]}
				}
			}`),
		},
	}
}

func (t *RecommendFoodTool) Run(ctx context.Context, args string) (string, error) {
	var params struct {
		Gender   string `json:"gender"`
		Location string `json:"location"`
		Disease  string `json:"disease"`
		Time     string `json:"time"`
		UserType string `json:"user_type"`
	}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &params); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}
	prompt := fmt.Sprintf(
		"Recommend dishes for a %s user with %s, %s, %s, %s (Vietnamese).",
		params.UserType, params.Disease, params.Location, params.Time, params.Gender)
	return askLLM(ctx, t.client, t.model, prompt)
}
