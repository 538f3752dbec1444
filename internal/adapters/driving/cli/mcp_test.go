package cli

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

func TestMCPCmd_Flags(t *testing.T) {
	for _, name := range []string{"port", "index-on-start", "crawl-on-start"} {
		assert.NotNil(t, mcpCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "p", mcpCmd.Flags().Lookup("port").Shorthand)
}

func TestMCPCmd_RequiresRetriever(t *testing.T) {
	useApp(t, &App{}, nil)

	_, err := run(t, "", "mcp")
	assert.Error(t, err)
}

func TestStartBackgroundIngest(t *testing.T) {
	indexer := &indexRecorder{done: make(chan driving.IndexRequest, 1)}
	siteIndexer := &siteRecorder{done: make(chan string, 1)}
	app := &App{Indexer: indexer, SiteIndexer: siteIndexer}
	app.Config.Indexer.Folder = "/data/docs"
	app.Config.Crawler.StartURL = "https://skole.no"

	require.NoError(t, startBackgroundIngest(ingestCmd(), app, true, true))

	select {
	case req := <-indexer.done:
		assert.Equal(t, "/data/docs", req.Folder)
	case <-time.After(time.Second):
		t.Fatal("folder was not indexed")
	}
	select {
	case u := <-siteIndexer.done:
		assert.Equal(t, "https://skole.no", u)
	case <-time.After(time.Second):
		t.Fatal("site was not indexed")
	}
}

func TestStartBackgroundIngest_Disabled(t *testing.T) {
	indexer := &indexRecorder{done: make(chan driving.IndexRequest, 1)}
	app := &App{Indexer: indexer}
	app.Config.Indexer.Folder = "/data/docs"

	require.NoError(t, startBackgroundIngest(ingestCmd(), app, false, true))

	select {
	case <-indexer.done:
		t.Fatal("folder indexed without being asked")
	case <-time.After(50 * time.Millisecond):
	}
	require.Nil(t, app.SiteIndexer)
}

func TestStartBackgroundIngest_UsesServerCommand(t *testing.T) {
	indexer := &indexRecorder{done: make(chan driving.IndexRequest, 1)}
	app := &App{Indexer: indexer}
	app.Config.Indexer.Folder = "/data/docs"
	app.Config.Indexer.Recursive = true
	app.Config.Indexer.Site = "skole"

	require.NoError(t, startBackgroundIngest(ingestCmd(), app, true, false))

	select {
	case req := <-indexer.done:
		assert.Equal(t, "/data/docs", req.Folder)
		assert.True(t, req.Recursive)
		assert.Equal(t, "skole", req.Site)
	case <-time.After(time.Second):
		t.Fatal("folder was not indexed")
	}
}

// ingestCmd returns a bare command carrying a background context.
func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "mcp"}
	cmd.SetContext(context.Background())
	return cmd
}

type indexRecorder struct {
	done chan driving.IndexRequest
}

func (r *indexRecorder) IndexFolder(_ context.Context, req driving.IndexRequest) (int, error) {
	r.done <- req
	return 1, nil
}

func (r *indexRecorder) IndexFile(context.Context, string, string) error { return nil }

type siteRecorder struct {
	done chan string
}

func (r *siteRecorder) Index(_ context.Context, startURL, _ string) (*driving.SiteIndexReport, error) {
	r.done <- startURL
	return &driving.SiteIndexReport{OK: 1}, nil
}
