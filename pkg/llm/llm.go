// Package llm provides the completion-provider abstraction consumed by
// query expansion and audit message generation. Providers are deliberately
// minimal: knowledge-store correctness never depends on a model call.
package llm

import "context"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Provider defines the interface for LLM integrations.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response text.
	Complete(ctx context.Context, messages []Message) (string, error)

	// Model returns the model name being used.
	Model() string
}
