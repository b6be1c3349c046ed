package tools

import (
	"context"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestRecommendFoodDetailBuildsSubPrompt(t *testing.T) {
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{textResponse("Bún bò Huế")}}
	tool := NewRecommendFoodDetailTool(llmClient, "gpt")

	out, err := tool.Run(context.Background(), `{"style": "món nước", "taste": "cay"}`)
	require.NoError(t, err)
	require.Equal(t, "Bún bò Huế", out)
	require.Len(t, llmClient.requests, 1)
	prompt := llmClient.requests[0].Messages[0].Content
	require.Contains(t, prompt, "món nước")
	require.Contains(t, prompt, "cay")
}

func TestRecommendFoodDetailBadArguments(t *testing.T) {
	llmClient := &mockLLM{}
	tool := NewRecommendFoodDetailTool(llmClient, "gpt")

	_, err := tool.Run(context.Background(), `{"style":`)
	require.Error(t, err)
	require.Empty(t, llmClient.requests)
}
