package driven

import "github.com/nordvik-labs/kilde/internal/core/domain"

// ConfigStore provides key-value access to the configuration file.
// Keys are dotted paths such as "caption.mode" or "store.url".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Keys returns every dotted key present, sorted.
	Keys() []string

	// Set stores a configuration value in memory. Call Save to persist.
	Set(key string, value any) error

	// Delete removes a key. Removing a missing key is not an error.
	Delete(key string) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage. A missing file is not an error.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// ConfigSource resolves the effective configuration from defaults, the
// config store and the environment.
type ConfigSource interface {
	// Config returns the validated configuration.
	Config() (domain.Config, error)

	// Effective renders every setting with secrets masked.
	Effective() ([]domain.Setting, error)
}
