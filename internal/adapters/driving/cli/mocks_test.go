package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driving"
)

type mockIndexer struct {
	req   driving.IndexRequest
	files int
	err   error
}

func (m *mockIndexer) IndexFolder(_ context.Context, req driving.IndexRequest) (int, error) {
	m.req = req
	return m.files, m.err
}

func (m *mockIndexer) IndexFile(context.Context, string, string) error { return m.err }

type mockSiteIndexer struct {
	url, site string
	report    *driving.SiteIndexReport
	err       error
}

func (m *mockSiteIndexer) Index(_ context.Context, startURL, site string) (*driving.SiteIndexReport, error) {
	m.url, m.site = startURL, site
	return m.report, m.err
}

type mockSession struct {
	pages     int
	questions []string
}

func (m *mockSession) Ask(_ context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	if question == "feil" {
		return "", errors.New("llm down")
	}
	return "svar på " + question, nil
}

func (m *mockSession) Pages() int { return m.pages }

type mockCrawler struct {
	session *mockSession
	url     string
}

func (m *mockCrawler) Crawl(_ context.Context, startURL string) (driving.SiteSession, error) {
	m.url = startURL
	return m.session, nil
}

type mockRetriever struct {
	query  string
	opts   domain.RetrieveOptions
	result *domain.RetrievalResult
	err    error
}

func (m *mockRetriever) Retrieve(
	_ context.Context, query string, opts domain.RetrieveOptions,
) (*domain.RetrievalResult, error) {
	m.query, m.opts = query, opts
	return m.result, m.err
}

type mockAnswers struct {
	question, site string
	answer         *domain.Answer
}

func (m *mockAnswers) Answer(_ context.Context, question, site string) (*domain.Answer, error) {
	m.question, m.site = question, site
	return m.answer, nil
}

type mockSettings struct {
	settings []domain.Setting
	set      map[string]string
	keys     map[domain.AIProvider]string
	checks   []driving.ProviderCheck
	setErr   error
}

func (m *mockSettings) Show() ([]domain.Setting, error) { return m.settings, nil }

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = map[string]string{}
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) SetAPIKey(provider domain.AIProvider, key string) error {
	if m.keys == nil {
		m.keys = map[domain.AIProvider]string{}
	}
	m.keys[provider] = key
	return nil
}

func (m *mockSettings) Check(context.Context) ([]driving.ProviderCheck, error) {
	return m.checks, nil
}

func (m *mockSettings) Path() string { return "/tmp/kilde/config.toml" }

// useApp makes app the result of every build and restores global state
// when the test ends. The received options are written to opts.
func useApp(t *testing.T, app *App, opts *Options) {
	t.Helper()

	SetBuilder(func(_ context.Context, o Options) (*App, error) {
		if opts != nil {
			*opts = o
		}
		return app, nil
	})
	t.Cleanup(func() {
		SetBuilder(nil)
		current = nil
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
}

// resetFlags restores every flag to its default so runs do not leak.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes args and returns stdout and stderr combined.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return buf.String(), err
}
