package ai

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, cfg domain.ProviderConfig) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, cfg)
	if svc != nil {
		svc.Close()
	}
	return err
}

// ValidateLLM validates a chat configuration by pinging the provider.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, cfg domain.ProviderConfig) error {
	svc, err := CreateAndValidateLLMService(ctx, cfg)
	if svc != nil {
		svc.Close()
	}
	return err
}
