package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error wrapping domain.ErrNotFound.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// If no store is set, services use the built-in DefaultPrompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	SetPromptStore(store PromptStore)
}

// Well-known prompt names used throughout the application.
const (
	// PromptAnswer builds the user message for question answering.
	// The template expects two %s placeholders: the context blocks, then the question.
	PromptAnswer = "answer"

	// PromptSystem is the system message sent with every question.
	// This prompt has no format placeholders.
	PromptSystem = "system"
)

// DefaultPrompts returns the built-in templates for every well-known prompt.
// Consumers fall back to these when no PromptStore is configured.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptSystem: "You are a helpful assistant that answers questions based on provided documents.",
		PromptAnswer: `You are a helpful assistant that answers questions based on the provided context.

Context:
%s

Question: %s

Instructions:
- Answer the question based ONLY on the information provided in the context above
- If the context doesn't contain enough information to answer the question, say so
- Be concise but comprehensive
- If you quote from the context, mention which document it's from

Answer:`,
	}
}
