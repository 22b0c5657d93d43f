// Package llm provides chat-completion clients for the insights feature.
// Two providers are supported behind one interface: any OpenAI-compatible
// endpoint and Anthropic.
package llm

import "context"

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient streams a chat completion. onDelta is invoked once per text
// fragment as it arrives; the full response is also returned.
type ChatClient interface {
	StreamChat(ctx context.Context, system string, messages []Message, onDelta func(text string)) (string, error)

	// Model returns the configured model name.
	Model() string
}
