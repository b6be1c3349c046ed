package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/config"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/prompt"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/pkg/tools"
)

type mockLLM struct {
	calls    []openai.ChatCompletionResponse
	requests []openai.ChatCompletionRequest
	err      error
}

func (m *mockLLM) CreateChatCompletion(_ context.Context, r openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.requests = append(m.requests, r)
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	if len(m.calls) == 0 {
		panic("mockLLM: no more responses configured")
	}
	resp := m.calls[0]
	m.calls = m.calls[1:]
	return resp, nil
}

func (m *mockLLM) CreateChatCompletionStream(context.Context, openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error) {
	panic("mockLLM: use the SSE test server for streaming tests")
}

type stubTool struct {
	name    string
	reply   string
	gotArgs string
	err     error
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub" }

func (t *stubTool) Definition() openai.Tool {
	return openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{Name: t.name, Description: "stub"},
	}
}

func (t *stubTool) Run(_ context.Context, args string) (string, error) {
	t.gotArgs = args
	return t.reply, t.err
}

type fixedRetriever struct {
	fragments []string
	indexed   []string
	queryErr  error
}

func (r *fixedRetriever) Index(_ context.Context, text string, _ map[string]string) error {
	r.indexed = append(r.indexed, text)
	return nil
}

func (r *fixedRetriever) Query(context.Context, string, int) ([]string, error) {
	return r.fragments, r.queryErr
}

func testBuilder(t *testing.T) *prompt.Builder {
	t.Helper()
	dir := t.TempDir()
	sys := filepath.Join(dir, "system_prompts")
	require.NoError(t, os.MkdirAll(sys, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sys, "chatbot_role.txt"), []byte("You recommend food."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sys, "persona.txt"), []byte("Friendly."), 0o644))
	b, err := prompt.NewBuilder(dir)
	require.NoError(t, err)
	return b
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	}
}

func toolCallResponse(id, name, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{{
					ID:       id,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: name, Arguments: args},
				}},
			},
		}},
	}
}

var testLLMConfig = config.LLMConfig{Model: "gpt", Temperature: 0.7, MaxTokens: 256}

func TestHandleMessage_DirectResponse(t *testing.T) {
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{textResponse("Hôm nay ăn phở nhé!")}}
	m := New(llmClient, testLLMConfig, testBuilder(t), nil, nil)
	mem := memory.NewManager("s1", 0, nil)

	out, err := m.HandleMessage(context.Background(), mem, "hôm nay ăn gì?")
	require.NoError(t, err)
	require.Equal(t, "Hôm nay ăn phở nhé!", out)

	hist := mem.History()
	require.Len(t, hist, 2)
	require.Equal(t, memory.RoleUser, hist[0].Role)
	require.Equal(t, memory.RoleAssistant, hist[1].Role)
	require.Equal(t, "Hôm nay ăn phở nhé!", hist[1].Content)

	// Payload shape: system prompt first, then the user turn.
	require.Len(t, llmClient.requests, 1)
	msgs := llmClient.requests[0].Messages
	require.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	require.Equal(t, "hôm nay ăn gì?", msgs[len(msgs)-1].Content)
}

func TestHandleMessage_ToolCallRoundTrip(t *testing.T) {
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "get_current_weather", `{}`),
		textResponse("Trời 28 độ, ăn bún chả đi!"),
	}}
	tool := &stubTool{name: "get_current_weather", reply: "Thời tiết ở Hanoi hôm nay là 28.0°C."}
	tm := tools.NewManager()
	tm.Register(tool)

	m := New(llmClient, testLLMConfig, testBuilder(t), nil, tm)
	mem := memory.NewManager("s1", 0, nil)

	out, err := m.HandleMessage(context.Background(), mem, "ăn gì hợp thời tiết?")
	require.NoError(t, err)
	require.Equal(t, "Trời 28 độ, ăn bún chả đi!", out)
	require.Equal(t, `{}`, tool.gotArgs)

	// Second request carries the assistant tool-call message and the tool result.
	require.Len(t, llmClient.requests, 2)
	msgs := llmClient.requests[1].Messages
	toolMsg := msgs[len(msgs)-1]
	require.Equal(t, openai.ChatMessageRoleTool, toolMsg.Role)
	require.Equal(t, "call_1", toolMsg.ToolCallID)
	require.Equal(t, tool.reply, toolMsg.Content)
}

func TestHandleMessage_ToolFailureFlowsBackToModel(t *testing.T) {
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "broken_tool", `{}`),
		textResponse("Xin lỗi, công cụ đang lỗi."),
	}}
	tm := tools.NewManager()
	tm.Register(&stubTool{name: "broken_tool", err: errors.New("boom")})

	m := New(llmClient, testLLMConfig, testBuilder(t), nil, tm)
	mem := memory.NewManager("s1", 0, nil)

	out, err := m.HandleMessage(context.Background(), mem, "dùng công cụ hỏng")
	require.NoError(t, err)
	require.Equal(t, "Xin lỗi, công cụ đang lỗi.", out)

	msgs := llmClient.requests[1].Messages
	require.Contains(t, msgs[len(msgs)-1].Content, "Error executing tool broken_tool")
}

func TestHandleMessage_UpstreamError(t *testing.T) {
	llmClient := &mockLLM{err: context.DeadlineExceeded}
	m := New(llmClient, testLLMConfig, testBuilder(t), nil, nil)
	mem := memory.NewManager("s1", 0, nil)

	_, err := m.HandleMessage(context.Background(), mem, "hi")
	require.ErrorIs(t, err, llm.ErrUpstream)

	// The failed turn must not fabricate an assistant reply.
	hist := mem.History()
	require.Len(t, hist, 1)
	require.Equal(t, memory.RoleUser, hist[0].Role)
}

func TestHandleMessage_RetrievedContextInPayload(t *testing.T) {
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{textResponse("Thử phở bò nhé.")}}
	retriever := &fixedRetriever{fragments: []string{"Beef noodle soup", "Grilled pork"}}
	m := New(llmClient, testLLMConfig, testBuilder(t), retriever, nil)
	mem := memory.NewManager("s1", 0, nil)

	_, err := m.HandleMessage(context.Background(), mem, "món nước nào ngon?")
	require.NoError(t, err)
	require.Equal(t, []string{"món nước nào ngon?"}, retriever.indexed)

	msgs := llmClient.requests[0].Messages
	require.Equal(t, openai.ChatMessageRoleSystem, msgs[1].Role)
	require.Contains(t, msgs[1].Content, "Beef noodle soup")
	require.Contains(t, msgs[1].Content, "Grilled pork")
}

func TestHandleMessage_RetrievalFailureDegrades(t *testing.T) {
	llmClient := &mockLLM{calls: []openai.ChatCompletionResponse{textResponse("ok")}}
	retriever := &fixedRetriever{queryErr: errors.New("store offline")}
	m := New(llmClient, testLLMConfig, testBuilder(t), retriever, nil)
	mem := memory.NewManager("s1", 0, nil)

	out, err := m.HandleMessage(context.Background(), mem, "hi")
	require.NoError(t, err)
	require.Equal(t, "ok", out)

	// Only the base system message and the user turn; no context message.
	require.Len(t, llmClient.requests[0].Messages, 2)
}

func TestHandleMessage_MaxTurnsBound(t *testing.T) {
	// The model keeps asking for tools; the loop must terminate.
	var calls []openai.ChatCompletionResponse
	for i := 0; i < maxTurns+1; i++ {
		calls = append(calls, toolCallResponse("call_x", "echo", `{}`))
	}
	llmClient := &mockLLM{calls: calls}
	tm := tools.NewManager()
	tm.Register(&stubTool{name: "echo", reply: "echo"})

	m := New(llmClient, testLLMConfig, testBuilder(t), nil, tm)
	mem := memory.NewManager("s1", 0, nil)

	_, err := m.HandleMessage(context.Background(), mem, "loop forever")
	require.Error(t, err)
	require.Contains(t, err.Error(), "maximum interaction turns")
	require.Len(t, llmClient.requests, maxTurns)
}
