package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService reads and edits the configuration file.
type SettingsService struct {
	configStore driven.ConfigStore
	source      driven.ConfigSource
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a settings service.
// The validator is optional (can be nil); without it Check reports nothing.
func NewSettingsService(
	configStore driven.ConfigStore,
	source driven.ConfigSource,
	aiValidator driven.AIConfigValidator,
) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		source:      source,
		aiValidator: aiValidator,
	}
}

// Show returns the effective configuration with secrets masked.
func (s *SettingsService) Show() ([]domain.Setting, error) {
	return s.source.Effective()
}

// Set stores key and saves the file. If the resulting configuration does
// not validate, the previous value is restored and nothing is written.
func (s *SettingsService) Set(key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInput)
	}

	prev, had := s.configStore.Get(key)
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if _, err := s.source.Config(); err != nil {
		if had {
			_ = s.configStore.Set(key, prev)
		} else {
			_ = s.configStore.Delete(key)
		}
		return err
	}
	return s.configStore.Save()
}

// SetAPIKey stores key for a provider that needs one and saves the file.
func (s *SettingsService) SetAPIKey(provider domain.AIProvider, key string) error {
	if !provider.IsValid() || !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: provider %q does not take an API key", domain.ErrInvalidInput, provider)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty API key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(domain.APIKeySetting(provider), key); err != nil {
		return fmt.Errorf("store key: %w", err)
	}
	return s.configStore.Save()
}

// Check pings the embedding, LLM and vision providers.
// Providers that are not configured are skipped.
func (s *SettingsService) Check(ctx context.Context) ([]driving.ProviderCheck, error) {
	cfg, err := s.source.Config()
	if err != nil {
		return nil, err
	}
	if s.aiValidator == nil {
		return nil, nil
	}

	var checks []driving.ProviderCheck
	roles := []struct {
		role     string
		pc       domain.ProviderConfig
		validate func(context.Context, domain.ProviderConfig) error
	}{
		{"embedding", cfg.Embedding, s.aiValidator.ValidateEmbedding},
		{"llm", cfg.LLM, s.aiValidator.ValidateLLM},
		{"vision", cfg.Vision, s.aiValidator.ValidateLLM},
	}
	for _, r := range roles {
		if r.pc.Provider == "" {
			continue
		}
		checks = append(checks, driving.ProviderCheck{
			Role:     r.role,
			Provider: r.pc.Provider,
			Model:    r.pc.Model,
			Err:      r.validate(ctx, r.pc),
		})
	}
	return checks, nil
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}
