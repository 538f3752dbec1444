package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordvik-labs/kilde/internal/core/domain"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	calls  [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return m.output, m.err
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{".pdf"}, New().Extensions())
}

func TestExtract_PerPage(t *testing.T) {
	runner := &mockRunner{output: []byte("Side en\n  tekst\f\fSide tre\f")}

	out, err := NewWithRunner(runner).Extract(context.Background(), "/docs/manual.pdf")
	require.NoError(t, err)

	assert.True(t, out.Paged)
	assert.Equal(t, domain.FormatPDF, out.Format)
	assert.Equal(t, "manual", out.Title)
	require.Len(t, out.Pages, 3)
	assert.Equal(t, "Side en tekst", out.Pages[0].Text)
	assert.Equal(t, "", out.Pages[1].Text)
	assert.Equal(t, 1, out.Pages[1].Index)
	assert.Equal(t, "Side tre", out.Pages[2].Text)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "pdftotext", runner.calls[0][0])
	assert.Equal(t, "/docs/manual.pdf", runner.calls[0][len(runner.calls[0])-2])
}

func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}

	_, err := NewWithRunner(runner).Extract(context.Background(), "broken.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptDocument)
	assert.Contains(t, err.Error(), "pdftotext crashed")
}

func TestExtract_NoPages(t *testing.T) {
	runner := &mockRunner{output: []byte("")}

	_, err := NewWithRunner(runner).Extract(context.Background(), "empty.pdf")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		count int
	}{
		{"two terminated pages", "a\fb\f", 2},
		{"unterminated last page", "a\fb", 2},
		{"blank pages kept", "\f\f", 2},
		{"single page no break", "only", 1},
		{"nothing", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, SplitPages(tt.in), tt.count)
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftoppm")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
}
