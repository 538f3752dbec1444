package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	accents := []lipgloss.Color{theme.Primary, theme.Secondary, theme.Success, theme.Warning, theme.Error}
	seen := make(map[lipgloss.Color]bool)
	for _, c := range accents {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[c], "duplicate accent %s", c)
		seen[c] = true
	}
}

func TestNewStyles_NilThemeFallsBack(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s.Theme())
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestNewStyles_TranscriptStyles(t *testing.T) {
	s := DefaultStyles()

	assert.True(t, s.Question.GetBold())
	assert.Equal(t, s.Theme().Secondary, s.Question.GetForeground())
	assert.True(t, s.Link.GetUnderline())
	assert.Equal(t, s.Theme().Background, s.StatusBar.GetBackground())
	assert.Contains(t, s.Answer.Render("svar"), "svar")
}
