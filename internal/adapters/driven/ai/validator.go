package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// sampleText is embedded to check the vector size a provider really returns.
const sampleText = "docmind dimension check"

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the provider and embeds a sample text. The
// returned vector must have the configured dimension, or the index would
// reject every chunk.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if err := ValidateEmbeddingConfig(config); err != nil {
		return err
	}
	if config == nil || !config.IsConfigured() {
		return nil
	}

	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	vec, err := svc.Embed(ctx, sampleText)
	if err != nil {
		return fmt.Errorf("sample embedding: %w", err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("%w: %s returned %d dimensions, configured %d",
			domain.ErrConfiguration, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}

// ValidateLLM validates an LLM configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}
