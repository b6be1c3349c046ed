package tools

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
)

// askLLM issues a one-shot sub-prompt to the model. Several tools answer by
// delegating the actual text generation back to the LLM.
func askLLM(ctx context.Context, client llm.Client, model, prompt string) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", llm.WrapUpstream(err)
	}
	if len(resp.Choices) == 0 {
		return "", llm.WrapUpstream(errors.New("completion returned no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}
