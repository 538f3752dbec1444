package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

var (
	indexPatterns    string
	indexRecursive   bool
	indexDeleteFirst bool
	indexPerPage     bool

	bootstrapDeleteFirst bool
)

var indexCmd = &cobra.Command{
	Use:   "index [folder]",
	Short: "Index a folder of documents",
	Long: `Extracts text from every matching file in a folder, captions scanned
pages when configured, embeds the text and writes it to the store.

The folder defaults to indexer.folder from the config file. Files that
cannot be read are logged and skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var siteIndexCmd = &cobra.Command{
	Use:   "siteindex [url]",
	Short: "Index the pages listed in a site's sitemap",
	Long: `Reads sitemap.xml at the site root and indexes every listed page into
the store. Linked PDFs are downloaded and indexed like local files.

The URL defaults to crawler.start-url from the config file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSiteIndex,
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the search index",
	Long:  `Creates the search index with the embedding model's dimensions.`,
	Args:  cobra.NoArgs,
	RunE:  runBootstrap,
}

var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Re-index files as they change",
	Long: `Watches a folder and indexes matching files when they are created or
modified. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	indexCmd.Flags().StringVar(&indexPatterns, "patterns", "", "file patterns separated by ',' or ';'")
	indexCmd.Flags().BoolVarP(&indexRecursive, "recursive", "r", false, "include subfolders")
	indexCmd.Flags().BoolVar(&indexDeleteFirst, "delete-first", false, "drop and recreate the index first")
	indexCmd.Flags().BoolVar(&indexPerPage, "per-page", false, "store one document per PDF page")

	watchCmd.Flags().StringVar(&indexPatterns, "patterns", "", "file patterns separated by ',' or ';'")
	watchCmd.Flags().BoolVarP(&indexRecursive, "recursive", "r", false, "include subfolders")

	bootstrapCmd.Flags().BoolVar(&bootstrapDeleteFirst, "delete-first", false, "drop the index before creating it")

	rootCmd.AddCommand(indexCmd, siteIndexCmd, bootstrapCmd, watchCmd)
}

// indexRequest builds a request from args, flags and config defaults.
func indexRequest(cmd *cobra.Command, app *App, args []string) (driving.IndexRequest, error) {
	req := driving.IndexRequest{
		Folder:    app.Config.Indexer.Folder,
		Patterns:  app.Config.Indexer.Patterns,
		Recursive: app.Config.Indexer.Recursive,
		Site:      site(app),
	}
	if len(args) == 1 {
		req.Folder = args[0]
	}
	if indexPatterns != "" {
		req.Patterns = indexPatterns
	}
	if cmd.Flags().Changed("recursive") {
		req.Recursive = indexRecursive
	}
	if req.Folder == "" {
		return req, errors.New("no folder given and indexer.folder is not set")
	}
	return req, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	overrides := map[string]string{}
	if cmd.Flags().Changed("per-page") {
		overrides["indexer.per-page"] = strconv.FormatBool(indexPerPage)
	}
	app, err := loadApp(cmd, Options{Overrides: overrides})
	if err != nil {
		return err
	}
	if app.Indexer == nil {
		return errors.New("indexer not configured")
	}
	req, err := indexRequest(cmd, app, args)
	if err != nil {
		return err
	}

	deleteFirst := app.Config.Indexer.DeleteFirst
	if cmd.Flags().Changed("delete-first") {
		deleteFirst = indexDeleteFirst
	}
	if app.Bootstrap != nil {
		if err := app.Bootstrap(cmd.Context(), deleteFirst); err != nil {
			return err
		}
	}

	n, err := app.Indexer.IndexFolder(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	cmd.Printf("Indexed %d files from %s\n", n, req.Folder)
	return nil
}

func runSiteIndex(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	if app.SiteIndexer == nil {
		return errors.New("site indexer not configured")
	}

	startURL := app.Config.Crawler.StartURL
	if len(args) == 1 {
		startURL = args[0]
	}
	if startURL == "" {
		return errors.New("no URL given and crawler.start-url is not set")
	}

	if app.Bootstrap != nil {
		if err := app.Bootstrap(cmd.Context(), false); err != nil {
			return err
		}
	}

	report, err := app.SiteIndexer.Index(cmd.Context(), startURL, site(app))
	if err != nil {
		return fmt.Errorf("site index failed: %w", err)
	}
	cmd.Printf("Indexed %d pages (%d PDFs), %d failed\n", report.OK, report.PDFs, report.Failed)
	return nil
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	if app.Bootstrap == nil {
		return errors.New("store not configured")
	}
	if err := app.Bootstrap(cmd.Context(), bootstrapDeleteFirst); err != nil {
		return err
	}
	cmd.Println("Index ready.")
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd, Options{})
	if err != nil {
		return err
	}
	if app.Watch == nil {
		return errors.New("watcher not configured")
	}
	req, err := indexRequest(cmd, app, args)
	if err != nil {
		return err
	}
	if app.Bootstrap != nil {
		if err := app.Bootstrap(cmd.Context(), false); err != nil {
			return err
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", req.Folder)
	return app.Watch(cmd.Context(), req)
}
