package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nordvik-labs/kilde/internal/adapters/driving/mcp"
	"github.com/nordvik-labs/kilde/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes a retrieve tool, an ask tool when a language model is
configured, and the kilde://index resource.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead.

Examples:
  # Stdio mode
  kilde mcp

  # HTTP mode, indexing the configured folder first
  kilde mcp --port 8080 --index-on-start`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.Flags().Bool("index-on-start", false, "index indexer.folder in the background")
	mcpCmd.Flags().Bool("crawl-on-start", false, "index crawler.start-url's sitemap in the background")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	indexOnStart, _ := cmd.Flags().GetBool("index-on-start")
	crawlOnStart, _ := cmd.Flags().GetBool("crawl-on-start")

	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Retrieval: app.Retriever,
		Answer:    app.Answers,
		Stats:     app.Stats,
		Backend:   string(app.Config.Store.Backend),
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if app.Bootstrap != nil {
		if err := app.Bootstrap(ctx, false); err != nil {
			return err
		}
	}
	if err := startBackgroundIngest(cmd, app, indexOnStart || app.Config.Indexer.RunOnStartup,
		crawlOnStart || app.Config.Crawler.RunOnStartup); err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}
	return server.Run(ctx)
}

// startBackgroundIngest indexes the configured folder and site while the
// server runs. Ingest failures are logged; only an unusable index request
// is returned.
func startBackgroundIngest(cmd *cobra.Command, app *App, folder, sitemap bool) error {
	ctx := cmd.Context()
	if folder && app.Indexer != nil && app.Config.Indexer.Folder != "" {
		req, err := indexRequest(cmd, app, nil)
		if err != nil {
			return fmt.Errorf("index on start: %w", err)
		}
		go func() {
			n, err := app.Indexer.IndexFolder(ctx, req)
			if err != nil {
				logger.Error("index on start: %v", err)
				return
			}
			logger.Info("index on start: %d files from %s", n, req.Folder)
		}()
	}
	if sitemap && app.SiteIndexer != nil && app.Config.Crawler.StartURL != "" {
		go func() {
			report, err := app.SiteIndexer.Index(ctx, app.Config.Crawler.StartURL, site(app))
			if err != nil {
				logger.Error("crawl on start: %v", err)
				return
			}
			logger.Info("crawl on start: %d pages, %d failed", report.OK, report.Failed)
		}()
	}
	return nil
}
