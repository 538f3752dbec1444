package driven

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if the provider is not configured.
	ValidateEmbedding(ctx context.Context, cfg domain.ProviderConfig) error

	// ValidateLLM validates a chat or vision configuration by pinging the provider.
	// Returns nil if the provider is not configured.
	ValidateLLM(ctx context.Context, cfg domain.ProviderConfig) error
}
