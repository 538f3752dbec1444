package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlCmd_SingleQuestion(t *testing.T) {
	crawler := &mockCrawler{session: &mockSession{pages: 12}}
	useApp(t, &App{Crawler: crawler}, nil)

	out, err := run(t, "", "crawl", "https://skole.no", "-q", "åpningstider")
	require.NoError(t, err)

	assert.Equal(t, "https://skole.no", crawler.url)
	assert.Contains(t, out, "Crawled 12 pages from https://skole.no")
	assert.Contains(t, out, "svar på åpningstider")
}

func TestCrawlCmd_Interactive(t *testing.T) {
	session := &mockSession{pages: 2}
	app := &App{Crawler: &mockCrawler{session: session}}
	app.Config.Crawler.StartURL = "https://kommune.no"
	useApp(t, app, nil)

	out, err := run(t, "første\nfeil\nandre\nexit\nignored\n", "crawl")
	require.NoError(t, err)

	assert.Equal(t, []string{"første", "feil", "andre"}, session.questions)
	assert.Contains(t, out, "svar på første")
	assert.Contains(t, out, "Error: llm down")
	assert.Contains(t, out, "svar på andre")
}

func TestCrawlCmd_EOFEndsLoop(t *testing.T) {
	session := &mockSession{}
	useApp(t, &App{Crawler: &mockCrawler{session: session}}, nil)

	_, err := run(t, "spørsmål", "crawl", "https://skole.no")
	require.NoError(t, err)
	assert.Equal(t, []string{"spørsmål"}, session.questions)
}
