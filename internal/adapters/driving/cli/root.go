// Package cli provides the kilde command line interface.
// It is a driving adapter: commands call the core through driving ports
// and never touch storage or providers directly.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nordvik-labs/kilde/internal/adapters/driving/mcp"
	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
	"github.com/nordvik-labs/kilde/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

var (
	configPath   string
	verbose      bool
	storeBackend string
	siteFlag     string
)

// Options are the global flags passed to the builder.
type Options struct {
	// ConfigPath is the TOML file. Empty means ~/.kilde/config.toml.
	ConfigPath string

	// Overrides are dotted settings applied over the file for this run only.
	Overrides map[string]string

	// SettingsOnly asks for the settings service alone. Providers and the
	// store are not contacted, so a broken configuration can be repaired.
	SettingsOnly bool
}

// App holds the services one command run needs.
type App struct {
	Config domain.Config

	Indexer     driving.IndexService
	SiteIndexer driving.SiteIndexService
	Crawler     driving.CrawlService
	Retriever   driving.RetrievalService
	Answers     driving.AnswerService
	Settings    driving.SettingsService
	Stats       mcp.IndexStats

	// Bootstrap ensures the index exists; deleteFirst drops it first.
	Bootstrap func(ctx context.Context, deleteFirst bool) error

	// Watch re-indexes files under req.Folder until ctx is cancelled.
	Watch func(ctx context.Context, req driving.IndexRequest) error

	// Close releases the store and providers. Optional.
	Close func() error
}

// Builder wires an App from the global flags.
type Builder func(ctx context.Context, opts Options) (*App, error)

var (
	appMu   sync.Mutex
	builder Builder
	current *App
)

// SetBuilder sets the function that wires services for commands.
func SetBuilder(b Builder) {
	appMu.Lock()
	defer appMu.Unlock()
	builder = b
}

var rootCmd = &cobra.Command{
	Use:   "kilde",
	Short: "Hybrid search and answers over documents and sites",
	Long: `kilde indexes local documents and websites into a search store and
answers questions grounded in what it finds.

Retrieval combines a lexical ranking and a vector ranking with reciprocal
rank fusion. Answers cite the documents they were built from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.kilde/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "store backend: elasticsearch, sqlite, postgres or memory")
	rootCmd.PersistentFlags().StringVar(&siteFlag, "site", "", "site tag to scope indexing and retrieval")
}

// Execute runs the root command and closes the wired services afterwards.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}

// loadApp wires services on first use. The global flags are merged into opts.
func loadApp(cmd *cobra.Command, opts Options) (*App, error) {
	appMu.Lock()
	defer appMu.Unlock()

	if current != nil {
		return current, nil
	}
	if builder == nil {
		return nil, errors.New("no services configured")
	}

	merged := make(map[string]string, len(opts.Overrides)+1)
	for k, v := range opts.Overrides {
		merged[k] = v
	}
	if storeBackend != "" {
		merged["store.backend"] = storeBackend
	}
	opts.ConfigPath = configPath
	opts.Overrides = merged

	app, err := builder(cmd.Context(), opts)
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	current = app
	return app, nil
}

func closeApp() {
	appMu.Lock()
	defer appMu.Unlock()

	if current != nil && current.Close != nil {
		if err := current.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
	current = nil
}

// site returns the --site flag or the configured default.
func site(app *App) string {
	if siteFlag != "" {
		return siteFlag
	}
	return app.Config.Indexer.Site
}

func printLinks(w io.Writer, links []domain.SourceLink) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Kilder:")
	for _, l := range links {
		fmt.Fprintf(w, "  - %s (%s)\n", l.Title, l.URL)
	}
}
