package driving

import (
	"context"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// ProviderCheck is the outcome of pinging one configured provider.
type ProviderCheck struct {
	// Role is "embedding", "llm" or "vision".
	Role     string
	Provider domain.AIProvider
	Model    string

	// Err is nil when the provider answered or is not configured.
	Err error
}

// SettingsService manages the configuration file.
type SettingsService interface {
	// Show returns the effective configuration with secrets masked.
	Show() ([]domain.Setting, error)

	// Set stores one dotted key and persists it. Values that make the
	// configuration invalid are rejected and not saved.
	Set(key, value string) error

	// SetAPIKey stores a cloud provider's API key and persists it.
	SetAPIKey(provider domain.AIProvider, key string) error

	// Check pings every configured provider.
	Check(ctx context.Context) ([]ProviderCheck, error)

	// Path returns the configuration file path.
	Path() string
}
