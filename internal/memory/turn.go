package memory

import "time"

// Role identifies the speaker of a conversational turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single message exchanged in a conversation. Turns are immutable
// once appended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn stamps a turn with the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, CreatedAt: time.Now().UTC()}
}
