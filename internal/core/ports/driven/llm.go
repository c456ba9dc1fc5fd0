// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService generates answers from a prompt built over retrieved chunks.
// This is an optional service - when nil, only retrieval is available.
//
// Implementations may include:
//   - OpenAI (GPT-3.5, GPT-4o)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a conversation and returns the full reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ChatStream conducts a conversation and returns the reply as a stream
	// of text fragments in generation order.
	ChatStream(ctx context.Context, messages []ChatMessage, opts ChatOptions) (TextStream, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// TextStream is a lazy, finite, non-restartable sequence of text fragments.
type TextStream interface {
	// Recv returns the next fragment. It returns io.EOF after the last one.
	Recv() (string, error)

	// Close releases the underlying connection. It is safe to call after io.EOF.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
