package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/llm"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
)

// Stream delivers an assistant reply as incremental text chunks. It is finite
// and not restartable; issue a new request to retry. Close cancels the
// upstream call and releases the receiver goroutine.
type Stream struct {
	chunks chan string
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Chunks returns the channel of text chunks. It is closed when the reply is
// complete, the upstream fails, or the stream is closed.
func (s *Stream) Chunks() <-chan string { return s.chunks }

// Err reports the terminal error, if any. It blocks until the stream
// completes, so call it only after draining Chunks or from another goroutine.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Close cancels the stream. Safe to call more than once.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// StreamMessage processes one user message and returns the reply as a stream.
// Content chunks are forwarded as they arrive; a tool call detected in the
// stream is dispatched after the upstream drains and its output is yielded as
// a final chunk. The accumulated reply is appended to memory when the stream
// completes.
func (m *Manager) StreamMessage(ctx context.Context, mem *memory.Manager, userText string) (*Stream, error) {
	messages := m.prepare(ctx, mem, userText)

	streamCtx, cancel := context.WithCancel(ctx)
	upstream, err := m.llmClient.CreateChatCompletionStream(streamCtx, m.completionRequest(messages, true))
	if err != nil {
		cancel()
		return nil, llm.WrapUpstream(err)
	}

	s := &Stream{
		chunks: make(chan string),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go m.pump(streamCtx, upstream, s, mem)
	return s, nil
}

// pump receives upstream deltas, forwards content, accumulates any tool call
// and finishes the turn.
func (m *Manager) pump(ctx context.Context, upstream *openai.ChatCompletionStream, s *Stream, mem *memory.Manager) {
	defer close(s.done)
	defer close(s.chunks)
	defer upstream.Close()
	defer s.cancel()

	var full strings.Builder
	var toolName string
	var toolArgs strings.Builder

	emit := func(text string) bool {
		if text == "" {
			return true
		}
		select {
		case s.chunks <- text:
			full.WriteString(text)
			return true
		case <-ctx.Done():
			s.err = ctx.Err()
			return false
		}
	}

	for {
		resp, err := upstream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				s.err = ctx.Err()
				return
			}
			s.err = llm.WrapUpstream(err)
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			if !emit(delta.Content) {
				return
			}
			continue
		}
		for _, tc := range delta.ToolCalls {
			if tc.Function.Name != "" {
				toolName = tc.Function.Name
			}
			toolArgs.WriteString(tc.Function.Arguments)
		}
	}

	if toolName != "" {
		if !emit(m.runTool(ctx, toolName, toolArgs.String())) {
			return
		}
	}

	mem.Append(ctx, memory.NewTurn(memory.RoleAssistant, full.String()))
	logger.L.Debug("stream completed", "session", mem.SessionID(), "chars", full.Len())
}
