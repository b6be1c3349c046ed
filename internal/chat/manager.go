// Package chat orchestrates a conversation turn: memory append, semantic
// retrieval, prompt assembly, the completion/tool-call loop against the LLM,
// and the final memory write. It holds no state of its own beyond references
// to the collaborating components.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/config"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/embeddings"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/prompt"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/pkg/tools"
)

// FSM states for one conversation turn.
type fsmState = stateless.State

var (
	stateReadyToCallLLM fsmState = "ReadyToCallLLM"
	stateExecutingTools fsmState = "ExecutingTools"
	stateDone           fsmState = "Done"
	stateError          fsmState = "Error"
)

// FSM triggers.
type fsmTrigger = stateless.Trigger

var (
	triggerProcessInput            fsmTrigger = "ProcessInput"
	triggerLLMRespondedWithContent fsmTrigger = "LLMRespondedWithContent"
	triggerLLMRequestedTools       fsmTrigger = "LLMRequestedTools"
	triggerToolsExecutionCompleted fsmTrigger = "ToolsExecutionCompleted"
	triggerErrorOccurred           fsmTrigger = "ErrorOccurred"
)

// maxTurns bounds the LLM -> tools -> LLM loop for a single user message.
const maxTurns = 5

// retrievalK is how many stored fragments are pulled in as context.
const retrievalK = 3

// Manager coordinates memory, retrieval, prompt building, the LLM client and
// the tool registry for a session's messages.
type Manager struct {
	llmClient llm.Client
	cfg       config.LLMConfig
	builder   *prompt.Builder
	retriever embeddings.Retriever
	tools     *tools.Manager
}

// New creates a chat manager. A nil retriever disables semantic recall and a
// nil tool manager disables tool calling.
func New(llmClient llm.Client, cfg config.LLMConfig, builder *prompt.Builder, retriever embeddings.Retriever, toolManager *tools.Manager) *Manager {
	if retriever == nil {
		retriever = embeddings.Disabled{}
	}
	if toolManager == nil {
		toolManager = tools.NewManager()
	}
	return &Manager{
		llmClient: llmClient,
		cfg:       cfg,
		builder:   builder,
		retriever: retriever,
		tools:     toolManager,
	}
}

// prepare appends the user turn, feeds it to the vector store, retrieves
// context and assembles the request payload. Retrieval problems degrade to an
// empty context instead of failing the message.
func (m *Manager) prepare(ctx context.Context, mem *memory.Manager, userText string) []openai.ChatCompletionMessage {
	mem.Append(ctx, memory.NewTurn(memory.RoleUser, userText))

	if err := m.retriever.Index(ctx, userText, map[string]string{"role": "user"}); err != nil {
		logger.L.Warn("failed to index user message", "error", err)
	}
	retrieved, err := m.retriever.Query(ctx, userText, retrievalK)
	if err != nil {
		logger.L.Warn("vector search failed, continuing without context", "error", err)
		retrieved = nil
	}

	return m.builder.Build(mem.History(), retrieved)
}

func (m *Manager) completionRequest(messages []openai.ChatCompletionMessage, stream bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       m.cfg.Model,
		Messages:    messages,
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxTokens,
		Stream:      stream,
	}
	if defs := m.tools.Definitions(); len(defs) > 0 {
		req.Tools = defs
	}
	return req
}

// HandleMessage processes one user message synchronously and returns the
// assistant's reply. The completion/tool loop is driven by a finite state
// machine: ReadyToCallLLM -> (ExecutingTools -> ReadyToCallLLM)* -> Done.
func (m *Manager) HandleMessage(ctx context.Context, mem *memory.Manager, userText string) (string, error) {
	messages := m.prepare(ctx, mem, userText)

	type fsmContext struct {
		messages     []openai.ChatCompletionMessage
		llmResponse  *openai.ChatCompletionResponse
		finalContent string
		lastError    error
		currentTurn  int
	}
	fsmCtx := &fsmContext{messages: messages}

	fsm := stateless.NewStateMachine(stateReadyToCallLLM)

	fsm.Configure(stateReadyToCallLLM).
		PermitReentry(triggerProcessInput).
		OnEntry(func(ctx context.Context, _ ...any) error {
			if fsmCtx.currentTurn >= maxTurns {
				fsmCtx.lastError = errors.New("exceeded maximum interaction turns")
				return fsm.FireCtx(ctx, triggerErrorOccurred)
			}
			fsmCtx.currentTurn++

			resp, err := m.llmClient.CreateChatCompletion(ctx, m.completionRequest(fsmCtx.messages, false))
			if err != nil {
				fsmCtx.lastError = llm.WrapUpstream(err)
				return fsm.FireCtx(ctx, triggerErrorOccurred)
			}
			fsmCtx.llmResponse = &resp

			if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
				return fsm.FireCtx(ctx, triggerLLMRequestedTools)
			}
			return fsm.FireCtx(ctx, triggerLLMRespondedWithContent)
		}).
		Permit(triggerLLMRequestedTools, stateExecutingTools).
		Permit(triggerLLMRespondedWithContent, stateDone).
		Permit(triggerErrorOccurred, stateError)

	fsm.Configure(stateExecutingTools).
		OnEntry(func(ctx context.Context, _ ...any) error {
			llmMessage := fsmCtx.llmResponse.Choices[0].Message
			fsmCtx.messages = append(fsmCtx.messages, llmMessage)

			for _, toolCall := range llmMessage.ToolCalls {
				content := m.runTool(ctx, toolCall.Function.Name, toolCall.Function.Arguments)
				fsmCtx.messages = append(fsmCtx.messages, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    content,
					ToolCallID: toolCall.ID,
					Name:       toolCall.Function.Name,
				})
			}
			return fsm.FireCtx(ctx, triggerToolsExecutionCompleted)
		}).
		Permit(triggerToolsExecutionCompleted, stateReadyToCallLLM).
		Permit(triggerErrorOccurred, stateError)

	fsm.Configure(stateDone).
		OnEntry(func(_ context.Context, _ ...any) error {
			if fsmCtx.llmResponse != nil && len(fsmCtx.llmResponse.Choices) > 0 {
				fsmCtx.finalContent = fsmCtx.llmResponse.Choices[0].Message.Content
			} else if fsmCtx.lastError == nil {
				fsmCtx.lastError = llm.WrapUpstream(errors.New("completion returned no choices"))
			}
			return nil
		})

	fsm.Configure(stateError).
		OnEntry(func(_ context.Context, _ ...any) error {
			if fsmCtx.lastError == nil {
				fsmCtx.lastError = errors.New("reached error state without a specific error")
			}
			return nil
		})

	if err := fsm.FireCtx(ctx, triggerProcessInput); err != nil {
		if fsmCtx.lastError != nil {
			return "", fsmCtx.lastError
		}
		return "", fmt.Errorf("conversation state machine: %w", err)
	}

	state, err := fsm.State(ctx)
	if err != nil {
		return "", fmt.Errorf("conversation state machine: %w", err)
	}
	switch state {
	case stateDone:
		if fsmCtx.lastError != nil && fsmCtx.finalContent == "" {
			return "", fsmCtx.lastError
		}
		mem.Append(ctx, memory.NewTurn(memory.RoleAssistant, fsmCtx.finalContent))
		return fsmCtx.finalContent, nil
	case stateError:
		return "", fsmCtx.lastError
	default:
		if fsmCtx.lastError != nil {
			return "", fsmCtx.lastError
		}
		return "", fmt.Errorf("conversation ended in unexpected state: %v", state)
	}
}

// runTool executes a tool call and folds failures into the tool result so
// the model can react to them, mirroring how errors flow back upstream.
func (m *Manager) runTool(ctx context.Context, name, args string) string {
	logger.L.Debug("dispatching tool call", "tool", name, "arguments", args)
	out, err := m.tools.Dispatch(ctx, name, args)
	if err != nil {
		logger.L.Warn("tool call failed", "tool", name, "error", err)
		return fmt.Sprintf("Error executing tool %s: %v", name, err)
	}
	return out
}
