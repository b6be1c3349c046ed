// Package prompt assembles the message payload sent to the chat-completion
// API: the system persona, an optional retrieval-context system message, and
// the conversation history in chronological order.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
)

// ErrTemplateNotFound is returned when a named prompt template file is absent.
var ErrTemplateNotFound = errors.New("prompt template not found")

const ragPreamble = "Bạn là trợ lý AI chuyên tư vấn về ẩm thực. " +
	"Hãy sử dụng thông tin dưới đây để giúp trả lời câu hỏi người dùng nếu phù hợp."

// Builder combines prompt template files with history and retrieved context.
// The system prompt is loaded once at construction; Build itself never fails.
type Builder struct {
	dir        string
	systemText string
}

// NewBuilder loads and concatenates the system prompt templates
// (system_prompts/chatbot_role.txt and system_prompts/persona.txt) from dir.
func NewBuilder(dir string) (*Builder, error) {
	role, err := loadTemplate(dir, filepath.Join("system_prompts", "chatbot_role.txt"))
	if err != nil {
		return nil, err
	}
	persona, err := loadTemplate(dir, filepath.Join("system_prompts", "persona.txt"))
	if err != nil {
		return nil, err
	}
	return &Builder{
		dir:        dir,
		systemText: role + "\n\n" + persona,
	}, nil
}

// SystemText returns the assembled system prompt.
func (b *Builder) SystemText() string { return b.systemText }

// Build produces the ordered message list for one completion request:
// system prompt, then (when retrieval produced anything) a second system
// message carrying the retrieved fragments, then the history as appended.
func (b *Builder) Build(history []memory.Turn, retrievedContext []string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: b.systemText,
	})

	if len(retrievedContext) > 0 {
		var sb strings.Builder
		sb.WriteString(ragPreamble)
		sb.WriteString("\n\nThông tin tham khảo được truy xuất từ cơ sở dữ liệu (có thể hữu ích cho câu hỏi):\n")
		for _, item := range retrievedContext {
			sb.WriteString("\n- ")
			sb.WriteString(item)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sb.String(),
		})
	}

	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}
	return messages
}

// LoadUserPromptTemplate loads a named template from the user_prompts
// directory, e.g. "faq.txt".
func (b *Builder) LoadUserPromptTemplate(name string) (string, error) {
	return loadTemplate(b.dir, filepath.Join("user_prompts", name))
}

func loadTemplate(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("load template %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
