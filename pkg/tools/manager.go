package tools

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Manager manages the available tools and dispatches model tool calls.
type Manager struct {
	tools map[string]Tool
	order []string
}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{tools: make(map[string]Tool)}
}

// Register registers a new tool. Registering the same name twice keeps the
// first registration.
func (m *Manager) Register(tool Tool) {
	if _, exists := m.tools[tool.Name()]; exists {
		return
	}
	m.tools[tool.Name()] = tool
	m.order = append(m.order, tool.Name())
}

// Get retrieves a tool by name.
func (m *Manager) Get(name string) (Tool, error) {
	tool, ok := m.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool, nil
}

// List returns all registered tools in registration order.
func (m *Manager) List() []Tool {
	ts := make([]Tool, 0, len(m.order))
	for _, name := range m.order {
		ts = append(ts, m.tools[name])
	}
	return ts
}

// Definitions returns the OpenAI tool declarations for all registered tools,
// in registration order.
func (m *Manager) Definitions() []openai.Tool {
	defs := make([]openai.Tool, 0, len(m.order))
	for _, name := range m.order {
		defs = append(defs, m.tools[name].Definition())
	}
	return defs
}

// Dispatch runs the named tool with the raw JSON arguments from the model.
func (m *Manager) Dispatch(ctx context.Context, name, args string) (string, error) {
	tool, err := m.Get(name)
	if err != nil {
		return "", err
	}
	return tool.Run(ctx, args)
}
