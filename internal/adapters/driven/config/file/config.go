package file

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// EnvPrefix prefixes the environment variable form of every setting key.
// caption.max-width becomes KILDE_CAPTION_MAX_WIDTH.
const EnvPrefix = "KILDE_"

// setting binds a dotted key to a field of domain.Config.
type setting struct {
	key string
	get func(*domain.Config) string
	set func(*domain.Config, any) error
}

// settings lists every key the config file and environment may set.
var settings = []setting{
	textKey("indexer.folder", func(c *domain.Config) *string { return &c.Indexer.Folder }),
	textKey("indexer.patterns", func(c *domain.Config) *string { return &c.Indexer.Patterns }),
	boolKey("indexer.recursive", func(c *domain.Config) *bool { return &c.Indexer.Recursive }),
	textKey("indexer.site", func(c *domain.Config) *string { return &c.Indexer.Site }),
	intKey("indexer.max-concurrency", func(c *domain.Config) *int { return &c.Indexer.MaxConcurrency }),
	boolKey("indexer.delete-first", func(c *domain.Config) *bool { return &c.Indexer.DeleteFirst }),
	boolKey("indexer.run-on-startup", func(c *domain.Config) *bool { return &c.Indexer.RunOnStartup }),
	boolKey("indexer.per-page", func(c *domain.Config) *bool { return &c.Indexer.PerPage }),

	boolKey("caption.image-captions", func(c *domain.Config) *bool { return &c.Caption.ImageCaptions }),
	boolKey("caption.render-pages", func(c *domain.Config) *bool { return &c.Caption.RenderPages }),
	textKey("caption.mode", func(c *domain.Config) *domain.CaptionMode { return &c.Caption.Mode }),
	intKey("caption.text-min-chars", func(c *domain.Config) *int { return &c.Caption.TextMinChars }),
	intKey("caption.max-width", func(c *domain.Config) *int { return &c.Caption.MaxWidth }),
	intKey("caption.target-width", func(c *domain.Config) *int { return &c.Caption.TargetWidth }),
	intKey("caption.render-dpi", func(c *domain.Config) *int { return &c.Caption.RenderDPI }),
	secondsKey("caption.timeout-seconds", func(c *domain.Config) *time.Duration { return &c.Caption.Timeout }),
	intKey("caption.max-concurrency", func(c *domain.Config) *int { return &c.Caption.MaxConcurrency }),
	intKey("caption.max-retries", func(c *domain.Config) *int { return &c.Caption.MaxRetries }),

	textKey("crawler.start-url", func(c *domain.Config) *string { return &c.Crawler.StartURL }),
	listKey("crawler.allowed-hosts", func(c *domain.Config) *[]string { return &c.Crawler.AllowedHosts }),
	boolKey("crawler.use-sitemap", func(c *domain.Config) *bool { return &c.Crawler.UseSitemap }),
	boolKey("crawler.include-images", func(c *domain.Config) *bool { return &c.Crawler.IncludeImages }),
	intKey("crawler.max-pages", func(c *domain.Config) *int { return &c.Crawler.MaxPages }),
	intKey("crawler.siteindex-pages", func(c *domain.Config) *int { return &c.Crawler.SiteIndexPages }),
	intKey("crawler.caption-max-images", func(c *domain.Config) *int { return &c.Crawler.CaptionMaxImages }),
	floatKey("crawler.requests-per-second", func(c *domain.Config) *float64 { return &c.Crawler.RequestsPerSec }),
	textKey("crawler.user-agent", func(c *domain.Config) *string { return &c.Crawler.UserAgent }),
	boolKey("crawler.run-on-startup", func(c *domain.Config) *bool { return &c.Crawler.RunOnStartup }),

	intKey("retrieval.take", func(c *domain.Config) *int { return &c.Retrieval.Take }),
	intKey("retrieval.ask-take", func(c *domain.Config) *int { return &c.Retrieval.AskTake }),
	intKey("retrieval.rrf-k", func(c *domain.Config) *int { return &c.Retrieval.RRFK }),

	textKey("store.backend", func(c *domain.Config) *domain.StoreBackend { return &c.Store.Backend }),
	textKey("store.url", func(c *domain.Config) *string { return &c.Store.URL }),
	textKey("store.index", func(c *domain.Config) *string { return &c.Store.Index }),
	textKey("store.path", func(c *domain.Config) *string { return &c.Store.Path }),
	textKey("store.username", func(c *domain.Config) *string { return &c.Store.Username }),
	textKey("store.password", func(c *domain.Config) *string { return &c.Store.Password }),
}

func init() {
	sections := map[string]func(*domain.Config) *domain.ProviderConfig{
		"embedding": func(c *domain.Config) *domain.ProviderConfig { return &c.Embedding },
		"llm":       func(c *domain.Config) *domain.ProviderConfig { return &c.LLM },
		"vision":    func(c *domain.Config) *domain.ProviderConfig { return &c.Vision },
	}
	for _, name := range []string{"embedding", "llm", "vision"} {
		section := sections[name]
		settings = append(settings,
			textKey(name+".provider", func(c *domain.Config) *domain.AIProvider { return &section(c).Provider }),
			textKey(name+".model", func(c *domain.Config) *string { return &section(c).Model }),
			textKey(name+".base-url", func(c *domain.Config) *string { return &section(c).BaseURL }),
			textKey(name+".api-key", func(c *domain.Config) *string { return &section(c).APIKey }),
		)
	}
}

// providerKeyEnv names the conventional environment variable for each cloud provider key.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	domain.AIProviderGemini:    "GEMINI_API_KEY",
}

// EnvName returns the environment variable for a dotted key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// LoadEnv loads .env files into the process environment.
// Missing files are ignored; existing variables are never overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig builds the effective configuration: defaults, then the
// config store, then environment variables read through getenv.
// A nil getenv means os.Getenv.
func LoadConfig(store driven.ConfigStore, getenv func(string) string) (domain.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := domain.DefaultConfig()

	for _, s := range settings {
		if store != nil {
			if v, ok := store.Get(s.key); ok {
				if err := s.set(&cfg, v); err != nil {
					return cfg, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, s.key, err)
				}
			}
		}
		if v := getenv(EnvName(s.key)); v != "" {
			if err := s.set(&cfg, v); err != nil {
				return cfg, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, EnvName(s.key), err)
			}
		}
	}

	for _, pc := range []*domain.ProviderConfig{&cfg.Embedding, &cfg.LLM, &cfg.Vision} {
		if pc.APIKey != "" {
			continue
		}
		if env, ok := providerKeyEnv[pc.Provider]; ok && getenv(env) != "" {
			pc.APIKey = getenv(env)
		} else if store != nil {
			pc.APIKey = store.GetString(domain.APIKeySetting(pc.Provider))
		}
	}

	return cfg, cfg.Validate()
}

// Ensure Resolver implements the interface.
var _ driven.ConfigSource = (*Resolver)(nil)

// Resolver resolves configuration from a store and the environment.
type Resolver struct {
	store  driven.ConfigStore
	getenv func(string) string
}

// NewResolver creates a resolver. A nil getenv means os.Getenv.
func NewResolver(store driven.ConfigStore, getenv func(string) string) *Resolver {
	return &Resolver{store: store, getenv: getenv}
}

// Config returns the effective configuration.
func (r *Resolver) Config() (domain.Config, error) {
	return LoadConfig(r.store, r.getenv)
}

// Effective returns every setting of the effective configuration, masked.
func (r *Resolver) Effective() ([]domain.Setting, error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, err
	}
	return Effective(cfg), nil
}

// Effective renders every setting of cfg. Secrets are masked.
func Effective(cfg domain.Config) []domain.Setting {
	out := make([]domain.Setting, 0, len(settings))
	for _, s := range settings {
		v := s.get(&cfg)
		if isSecret(s.key) {
			v = Mask(v)
		}
		out = append(out, domain.Setting{Key: s.key, Value: v})
	}
	return out
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, ".api-key") || strings.HasSuffix(key, ".password")
}

func textKey[T ~string](key string, field func(*domain.Config) *T) setting {
	return setting{
		key: key,
		get: func(c *domain.Config) string { return string(*field(c)) },
		set: func(c *domain.Config, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", v)
			}
			*field(c) = T(strings.TrimSpace(s))
			return nil
		},
	}
}

func intKey(key string, field func(*domain.Config) *int) setting {
	return setting{
		key: key,
		get: func(c *domain.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *domain.Config, v any) error {
			n, err := toInt(v)
			if err != nil {
				return err
			}
			*field(c) = n
			return nil
		},
	}
}

func boolKey(key string, field func(*domain.Config) *bool) setting {
	return setting{
		key: key,
		get: func(c *domain.Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *domain.Config, v any) error {
			switch b := v.(type) {
			case bool:
				*field(c) = b
			case string:
				parsed, err := strconv.ParseBool(strings.TrimSpace(b))
				if err != nil {
					return err
				}
				*field(c) = parsed
			default:
				return fmt.Errorf("expected bool, got %T", v)
			}
			return nil
		},
	}
}

func floatKey(key string, field func(*domain.Config) *float64) setting {
	return setting{
		key: key,
		get: func(c *domain.Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *domain.Config, v any) error {
			f, err := toFloat(v)
			if err != nil {
				return err
			}
			*field(c) = f
			return nil
		},
	}
}

func secondsKey(key string, field func(*domain.Config) *time.Duration) setting {
	return setting{
		key: key,
		get: func(c *domain.Config) string { return strconv.FormatFloat(field(c).Seconds(), 'g', -1, 64) },
		set: func(c *domain.Config, v any) error {
			f, err := toFloat(v)
			if err != nil {
				return err
			}
			*field(c) = time.Duration(f * float64(time.Second))
			return nil
		},
	}
}

func listKey(key string, field func(*domain.Config) *[]string) setting {
	return setting{
		key: key,
		get: func(c *domain.Config) string { return strings.Join(*field(c), ",") },
		set: func(c *domain.Config, v any) error {
			switch l := v.(type) {
			case string:
				*field(c) = splitList(l)
			case []string:
				*field(c) = l
			case []any:
				out := make([]string, 0, len(l))
				for _, item := range l {
					s, ok := item.(string)
					if !ok {
						return fmt.Errorf("expected string list item, got %T", item)
					}
					out = append(out, s)
				}
				*field(c) = out
			default:
				return fmt.Errorf("expected list, got %T", v)
			}
			return nil
		},
	}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
