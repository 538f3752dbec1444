// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	geminiembed "github.com/nordvik-labs/kilde/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/nordvik-labs/kilde/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/nordvik-labs/kilde/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/nordvik-labs/kilde/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/nordvik-labs/kilde/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/nordvik-labs/kilde/internal/adapters/driven/llm/ollama"
	openaillm "github.com/nordvik-labs/kilde/internal/adapters/driven/llm/openai"
	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// chatService is implemented by every chat adapter: all of them accept images.
type chatService interface {
	driven.LLMService
	driven.VisionService
}

// Services holds the AI adapters built from configuration.
// Any field may be nil when its provider is not configured.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Vision    driven.VisionService

	// Warnings lists non-fatal issues, such as an unreachable answer model.
	Warnings []string
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
	if c, ok := s.Vision.(interface{ Close() error }); ok {
		c.Close()
	}
}

// Init builds the embedding, answer and vision services from cfg.
// Embeddings are required and must answer a ping. Chat and vision
// failures degrade to warnings so retrieval still works.
func Init(ctx context.Context, cfg domain.Config) (*Services, error) {
	emb, err := CreateAndValidateEmbeddingService(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	if emb == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	out := &Services{Embedding: emb}

	llm, err := CreateLLMService(ctx, cfg.LLM)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("answers disabled: %v", err))
	} else if llm != nil {
		out.LLM = llm
	}

	if cfg.Caption.ImageCaptions {
		vision, err := CreateVisionService(ctx, cfg.Vision)
		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("image captions disabled: %v", err))
		} else if vision != nil {
			out.Vision = vision
		}
	}
	return out, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil if the provider is not configured.
func CreateAndValidateEmbeddingService(ctx context.Context, cfg domain.ProviderConfig) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'kilde config set-key' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil if the provider is not configured.
func CreateAndValidateLLMService(ctx context.Context, cfg domain.ProviderConfig) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for cfg.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, cfg domain.ProviderConfig) (driven.EmbeddingService, error) {
	if !cfg.IsConfigured() {
		if cfg.Provider.IsValid() {
			return nil, fmt.Errorf("%s: %w", cfg.Provider, domain.ErrMissingAPIKey)
		}
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[cfg.Model]

	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: dimensions,
		})

	default:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama, openai or gemini", cfg.Provider)
	}
}

// CreateLLMService creates the answer service for cfg.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, cfg domain.ProviderConfig) (driven.LLMService, error) {
	svc, err := createChat(ctx, cfg)
	if svc == nil || err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateVisionService creates the image description service for cfg.
// Returns nil if the provider is not configured.
func CreateVisionService(ctx context.Context, cfg domain.ProviderConfig) (driven.VisionService, error) {
	svc, err := createChat(ctx, cfg)
	if svc == nil || err != nil {
		return nil, err
	}
	return svc, nil
}

func createChat(ctx context.Context, cfg domain.ProviderConfig) (chatService, error) {
	if !cfg.IsConfigured() {
		if cfg.Provider.IsValid() {
			return nil, fmt.Errorf("%s: %w", cfg.Provider, domain.ErrMissingAPIKey)
		}
		return nil, nil
	}

	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.LLMConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})

	default:
		return nil, errors.New("unsupported chat provider: " + cfg.Provider.String())
	}
}
