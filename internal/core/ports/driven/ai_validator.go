package driven

import "github.com/custodia-labs/docmind/internal/core/domain"

// AIConfigValidator checks AI provider settings against the live provider.
type AIConfigValidator interface {
	// ValidateEmbedding checks the provider is reachable and returns
	// vectors of the configured dimension. Unconfigured settings pass.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks the provider is reachable. Unconfigured settings pass.
	ValidateLLM(config *domain.LLMSettings) error
}
